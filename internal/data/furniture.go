package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Interaction types understood by the server. Anything else is treated as
// InteractDefault.
const (
	InteractDefault = "default"
	InteractGate    = "gate"
	InteractChair   = "chair"
	InteractBed     = "bed"
	InteractRoller  = "roller"
)

// FurnitureDef is a furniture template, loaded from furniture_list.yaml.
type FurnitureDef struct {
	ID          int32   `yaml:"id"`
	Name        string  `yaml:"name"`
	Width       int32   `yaml:"width"`
	Length      int32   `yaml:"length"`
	StackHeight float64 `yaml:"stack_height"`
	CanStack    bool    `yaml:"can_stack"`
	CanWalk     bool    `yaml:"can_walk"`
	CanSit      bool    `yaml:"can_sit"`
	Interaction string  `yaml:"interaction"`
	States      int32   `yaml:"states"` // number of interaction states (0/1 = static)
}

// FurnitureTable holds all furniture templates indexed by ID.
type FurnitureTable struct {
	defs map[int32]*FurnitureDef
}

type furnitureListFile struct {
	Furniture []FurnitureDef `yaml:"furniture"`
}

// LoadFurnitureTable loads furniture templates from a YAML file.
func LoadFurnitureTable(path string) (*FurnitureTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read furniture_list: %w", err)
	}
	var f furnitureListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse furniture_list: %w", err)
	}

	t := &FurnitureTable{defs: make(map[int32]*FurnitureDef, len(f.Furniture))}
	for i := range f.Furniture {
		def := f.Furniture[i]
		if _, dup := t.defs[def.ID]; dup {
			return nil, fmt.Errorf("furniture_list: duplicate id %d", def.ID)
		}
		if def.Width <= 0 {
			def.Width = 1
		}
		if def.Length <= 0 {
			def.Length = 1
		}
		if def.Interaction == "" {
			def.Interaction = InteractDefault
		}
		t.defs[def.ID] = &def
	}
	return t, nil
}

// NewFurnitureTable builds a table from definitions already in memory.
func NewFurnitureTable(defs ...FurnitureDef) *FurnitureTable {
	t := &FurnitureTable{defs: make(map[int32]*FurnitureDef, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.Interaction == "" {
			def.Interaction = InteractDefault
		}
		t.defs[def.ID] = &def
	}
	return t
}

// Get returns a furniture template by ID, or nil if not found.
func (t *FurnitureTable) Get(id int32) *FurnitureDef {
	return t.defs[id]
}

// Count returns the number of templates loaded.
func (t *FurnitureTable) Count() int {
	return len(t.defs)
}
