package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoPresetDir is returned by preset commands when no preset directory is configured.
var ErrNoPresetDir = errors.New("no preset directory")

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}
type presetMeta struct {
	name string
}
type presetData struct {
	list []*presetMeta
}

// presetManager reads <dir>/_list.json and <dir>/<name>.json.
type presetManager struct {
	dir  string
	data *presetData
}

func newPresetManager(dir string) *presetManager {
	return &presetManager{
		dir: dir,
	}
}

func (pm *presetManager) getList() ([]*presetMeta, error) {
	if pm.data == nil {
		data, err := pm.loadData()
		if err != nil {
			return nil, err
		}
		pm.data = data
	}
	return pm.data.list, nil
}

func (pm *presetManager) path(name string) (string, error) {
	if pm == nil || pm.dir == "" {
		return "", ErrNoPresetDir
	}
	if name == "" || name != filepath.Base(name) || name[0] == '_' || name[0] == '.' {
		return "", fmt.Errorf("%w: bad preset name %q", ErrInvalidCommand, name)
	}
	return filepath.Join(pm.dir, name+".json"), nil
}

func (pm *presetManager) read(name string) ([]byte, error) {
	path, err := pm.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// write stores a preset and adds it to the list if it is new.
func (pm *presetManager) write(name string, data []byte) error {
	path, err := pm.path(name)
	if err != nil {
		return err
	}
	// a broken list stops the save before anything is written
	list, err := pm.getList()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	for _, meta := range list {
		if meta.name == name {
			return nil
		}
	}
	pm.data.list = append(pm.data.list, &presetMeta{name: name})
	return pm.saveData()
}

// loadData reads _list.json. A missing list is an empty one.
func (pm *presetManager) loadData() (*presetData, error) {
	data := &presetData{list: make([]*presetMeta, 0, 128)}
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	metaListJSON := &presetMetaListJSON{}
	err = json.Unmarshal(bytes, &metaListJSON)
	if err != nil {
		return nil, fmt.Errorf("broken preset list: %w", err)
	}
	for _, item := range metaListJSON.Items {
		data.list = append(data.list, &presetMeta{name: item.Name})
	}
	return data, nil
}

func (pm *presetManager) saveData() error {
	metaListJSON := &presetMetaListJSON{Items: make([]presetMetaJSON, len(pm.data.list))}
	for i, meta := range pm.data.list {
		metaListJSON.Items[i] = presetMetaJSON{Name: meta.name}
	}
	bytes, err := json.MarshalIndent(metaListJSON, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pm.dir, "_list.json"), bytes, 0644)
}

// ----- Engine ----- //

func (e *engine) loadPreset(name string) error {
	data, err := e.presets.read(name)
	if err != nil {
		return err
	}
	return e.applyJSON(data)
}

func (e *engine) savePreset(name string) error {
	data, err := e.toJSON()
	if err != nil {
		return err
	}
	return e.presets.write(name, data)
}
