package inspection

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Template is a single check definition from which checklist items are built.
type Template struct {
	Label           string    `toml:"label" json:"label"`
	Description     string    `toml:"description" json:"description"`
	Category        Category  `toml:"category" json:"category"`
	Type            InputType `toml:"type" json:"type"`
	Options         []string  `toml:"options" json:"options,omitempty"`
	Required        bool      `toml:"required" json:"required"`
	Priority        Priority  `toml:"priority" json:"priority"`
	HasVisual       bool      `toml:"visual_evidence" json:"hasVisualEvidence"`
	HasFixtures     bool      `toml:"fixtures" json:"hasFixtures"`
	FixturesType    string    `toml:"fixtures_type" json:"fixturesType,omitempty"`
	FixturesOptions []string  `toml:"fixtures_options" json:"fixturesOptions,omitempty"`
	HasDamageOrWear bool      `toml:"damage_or_wear" json:"hasDamageOrWear"`
}

func (t Template) validate() error {
	if t.Label == "" {
		return fmt.Errorf("template label is required")
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("template %q: invalid category %q", t.Label, t.Category)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("template %q: invalid type %q", t.Label, t.Type)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("template %q: invalid priority %q", t.Label, t.Priority)
	}
	if t.Type == InputDropdown && len(t.Options) == 0 {
		return fmt.Errorf("template %q: dropdown requires options", t.Label)
	}
	return nil
}

// Catalog maps room types to their check templates, plus the general
// property checks every record starts with.
type Catalog struct {
	general []Template
	rooms   map[RoomType][]Template
}

// Current lets a fixed *Catalog act as its own provider.
func (c *Catalog) Current() *Catalog { return c }

// General returns the property-wide checks.
func (c *Catalog) General() []Template {
	return c.general
}

// ForRoom returns the templates for t, falling back to the "other" list when
// the type has no template of its own.
func (c *Catalog) ForRoom(t RoomType) []Template {
	if tmpl, ok := c.rooms[t]; ok && len(tmpl) > 0 {
		return tmpl
	}
	return c.rooms[RoomOther]
}

// RoomTypes lists the room types that have explicit templates.
func (c *Catalog) RoomTypes() []RoomType {
	out := make([]RoomType, 0, len(c.rooms))
	for _, rt := range []RoomType{
		RoomKitchen, RoomBedroom, RoomBathroom, RoomLivingRoom, RoomHallway,
		RoomDiningRoom, RoomUtility, RoomConservatory, RoomOffice, RoomLoft,
		RoomGarden, RoomOther,
	} {
		if _, ok := c.rooms[rt]; ok {
			out = append(out, rt)
		}
	}
	return out
}

// catalogFile is the on-disk TOML layout:
//
//	[[general]]
//	label = "Smoke Detectors"
//	...
//	[[rooms.kitchen]]
//	label = "Kitchen Sink Condition"
type catalogFile struct {
	General []Template              `toml:"general"`
	Rooms   map[RoomType][]Template `toml:"rooms"`
}

// LoadCatalog reads a TOML catalog from path and merges it over the default
// catalog. A list present in the file replaces the default list for that key.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes TOML catalog data merged over the defaults.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	cat := DefaultCatalog()
	if len(file.General) > 0 {
		for _, t := range file.General {
			if err := t.validate(); err != nil {
				return nil, fmt.Errorf("general: %w", err)
			}
		}
		cat.general = file.General
	}
	for rt, list := range file.Rooms {
		if !rt.IsValid() {
			return nil, fmt.Errorf("unknown room type %q", rt)
		}
		if len(list) == 0 {
			if rt == RoomOther {
				return nil, fmt.Errorf("room type %q must keep at least one template", rt)
			}
			delete(cat.rooms, rt)
			continue
		}
		for _, t := range list {
			if err := t.validate(); err != nil {
				return nil, fmt.Errorf("rooms.%s: %w", rt, err)
			}
		}
		cat.rooms[rt] = list
	}
	return cat, nil
}

var (
	conditionOptions = []string{"Excellent", "Good", "Fair", "Poor"}
	flooringOptions  = []string{"Excellent", "Good", "Fair", "Poor", "Needs replacement"}
	windowOptions    = []string{"Excellent", "Good", "Needs attention", "Poor"}
	heatingOptions   = []string{"Working well", "Adequate", "Poor", "Not working"}
)

func socketsCheck(cat Category, priority Priority) Template {
	return Template{
		Label: "Electrical Sockets", Description: "Count and condition of electrical outlets",
		Category: cat, Type: InputCount, Required: true, Priority: priority,
		HasVisual: true, HasFixtures: true, FixturesType: "sockets", HasDamageOrWear: true,
	}
}

func windowCheck(cat Category) Template {
	return Template{
		Label: "Window Condition", Description: "Windows, locks, and opening mechanisms",
		Category: cat, Type: InputDropdown, Options: windowOptions, Required: true, Priority: PriorityMedium,
		HasVisual: true, HasFixtures: true, FixturesType: "windows", HasDamageOrWear: true,
	}
}

func flooringCheck(cat Category) Template {
	return Template{
		Label: "Flooring Condition", Description: "Carpet, laminate, or other flooring condition",
		Category: cat, Type: InputDropdown, Options: flooringOptions, Required: true, Priority: PriorityLow,
		HasVisual: true, HasDamageOrWear: true,
	}
}

func lightingCheck(cat Category, room string) Template {
	return Template{
		Label: "Lighting", Description: room + " lighting adequacy and functionality",
		Category: cat, Type: InputBoolean, Required: true, Priority: PriorityMedium,
		HasVisual: true, HasFixtures: true, FixturesType: "lights", HasDamageOrWear: true,
	}
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	general := []Template{
		{
			Label: "Property Address Verification", Description: "Confirm property address matches records",
			Category: CategoryGeneral, Type: InputBoolean, Required: true, Priority: PriorityHigh,
			HasVisual: true,
		},
		{
			Label: "External Property Condition", Description: "Overall external condition assessment",
			Category: CategoryGeneral, Type: InputDropdown, Options: conditionOptions, Required: true, Priority: PriorityMedium,
			HasVisual: true, HasDamageOrWear: true,
		},
		{
			Label: "Smoke Detectors", Description: "Test all smoke detection devices",
			Category: CategorySafety, Type: InputDropdown,
			Options:  []string{"All working", "Some not working", "None working", "Not installed"},
			Required: true, Priority: PriorityCritical,
			HasVisual: true, HasFixtures: true, FixturesType: "smoke-detectors", HasDamageOrWear: true,
		},
		{
			Label: "Carbon Monoxide Detectors", Description: "Test CO detectors where required",
			Category: CategorySafety, Type: InputDropdown,
			Options:  []string{"All working", "Some not working", "None working", "Not required"},
			Required: true, Priority: PriorityCritical,
			HasVisual: true, HasFixtures: true, FixturesType: "co-detectors", HasDamageOrWear: true,
		},
	}

	rooms := map[RoomType][]Template{
		RoomKitchen: {
			{
				Label: "Kitchen Sink Condition", Description: "Check taps, drainage, and overall condition",
				Category: CategoryKitchen, Type: InputDropdown,
				Options:  []string{"Excellent", "Good", "Needs repair", "Replace required"},
				Required: true, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "taps", HasDamageOrWear: true,
			},
			{
				Label: "Kitchen Appliances", Description: "Built-in appliances functionality",
				Category: CategoryKitchen, Type: InputText, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "appliances", HasDamageOrWear: true,
			},
			socketsCheck(CategoryKitchen, PriorityHigh),
			{
				Label: "Gas Safety (if applicable)", Description: "Gas connections and safety checks",
				Category: CategoryKitchen, Type: InputDropdown,
				Options:  []string{"Safe", "Needs attention", "Unsafe", "Not applicable"},
				Required: true, Priority: PriorityCritical,
				HasVisual: true, HasFixtures: true, FixturesType: "gas-connections", HasDamageOrWear: true,
			},
			{
				Label: "Ventilation", Description: "Kitchen ventilation and extraction",
				Category: CategoryKitchen, Type: InputDropdown,
				Options:  []string{"Adequate", "Poor", "Not working"},
				Required: true, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "ventilation", HasDamageOrWear: true,
			},
			lightingCheck(CategoryKitchen, "Kitchen"),
		},
		RoomBedroom: {
			windowCheck(CategoryBedroom),
			socketsCheck(CategoryBedroom, PriorityMedium),
			lightingCheck(CategoryBedroom, "Bedroom"),
			{
				Label: "Heating", Description: "Radiator or heating system functionality",
				Category: CategoryBedroom, Type: InputDropdown, Options: heatingOptions,
				Required: true, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "radiator", HasDamageOrWear: true,
			},
			flooringCheck(CategoryBedroom),
		},
		RoomBathroom: {
			{
				Label: "Toilet Functionality", Description: "Flush mechanism and overall condition",
				Category: CategoryBathroom, Type: InputDropdown,
				Options:  []string{"Working well", "Minor issues", "Major repair needed"},
				Required: true, Priority: PriorityHigh,
				HasVisual: true, HasFixtures: true, FixturesType: "toilet", HasDamageOrWear: true,
			},
			{
				Label: "Bath/Shower Condition", Description: "Taps, drainage, and sealing",
				Category: CategoryBathroom, Type: InputDropdown, Options: windowOptions,
				Required: true, Priority: PriorityHigh,
				HasVisual: true, HasFixtures: true, FixturesType: "bath-shower", HasDamageOrWear: true,
			},
			{
				Label: "Water Pressure", Description: "Hot and cold water pressure",
				Category: CategoryBathroom, Type: InputDropdown,
				Options:  []string{"Excellent", "Good", "Adequate", "Poor"},
				Required: true, Priority: PriorityMedium,
				HasFixtures: true, FixturesType: "taps",
			},
			{
				Label: "Bathroom Ventilation", Description: "Extractor fan and natural ventilation",
				Category: CategoryBathroom, Type: InputBoolean, Required: true, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "ventilation", HasDamageOrWear: true,
			},
			{
				Label: "Electrical Safety", Description: "Bathroom electrical installations safety",
				Category: CategoryBathroom, Type: InputDropdown,
				Options:  []string{"Safe", "Needs attention", "Unsafe"},
				Required: true, Priority: PriorityCritical,
				HasVisual: true, HasFixtures: true, FixturesType: "electrical", HasDamageOrWear: true,
			},
		},
		RoomLivingRoom: {
			windowCheck(CategoryLivingRoom),
			socketsCheck(CategoryLivingRoom, PriorityMedium),
			{
				Label: "Heating System", Description: "Radiator or heating system functionality",
				Category: CategoryLivingRoom, Type: InputDropdown, Options: heatingOptions,
				Required: true, Priority: PriorityMedium,
				HasVisual: true, HasFixtures: true, FixturesType: "radiator", HasDamageOrWear: true,
			},
			flooringCheck(CategoryLivingRoom),
		},
		RoomHallway: {
			lightingCheck(CategoryGeneral, "Hallway"),
			flooringCheck(CategoryGeneral),
		},
		RoomOther: {
			{
				Label: "General Condition", Description: "Overall condition of the space",
				Category: CategoryGeneral, Type: InputDropdown, Options: conditionOptions,
				Required: true, Priority: PriorityMedium,
				HasVisual: true, HasDamageOrWear: true,
			},
			{
				Label: "Safety Considerations", Description: "Any safety concerns or considerations",
				Category: CategorySafety, Type: InputText, Priority: PriorityHigh,
				HasVisual: true, HasDamageOrWear: true,
			},
		},
	}

	return &Catalog{general: general, rooms: rooms}
}
