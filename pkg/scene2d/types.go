package scene2d

// Plan is the top-down floor plan of one level for an SVG renderer.
// Coordinates are [x, z] on the floor plane.
type Plan struct {
	Metadata Metadata  `json:"metadata"`
	Areas    []Area2D  `json:"areas"`
	Doors    []Door2D  `json:"doors"`
	Stairs   []Stair2D `json:"stairs"`
	Paths    []Path2D  `json:"paths"`
	Agents   []Agent2D `json:"agents"`
}

// Metadata holds level-wide summary data.
type Metadata struct {
	Building       string     `json:"building"`
	Level          string     `json:"level"`
	LevelIndex     int        `json:"level_index"`
	Elevation      float64    `json:"elevation"`
	AreaCount      int        `json:"area_count"`
	UngraphedAreas []string   `json:"ungraphed_areas,omitempty"`
	BoundsMin      [2]float64 `json:"bounds_min"`
	BoundsMax      [2]float64 `json:"bounds_max"`
	MaxEgress      float64    `json:"max_egress_m"`
	GeneratedAt    string     `json:"generated_at"`
}

// Area2D is a room footprint.
type Area2D struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Center    [2]float64   `json:"center"`
	Boundary  [][2]float64 `json:"boundary"`
	AreaM2    float64      `json:"area_m2"`
	SurfaceM2 float64      `json:"surface_m2,omitempty"` // declared, may differ from the footprint
	Reachable bool         `json:"reachable"`
	EgressM   float64      `json:"egress_m,omitempty"`
}

// Door2D is a door marker.
type Door2D struct {
	ID       string     `json:"id"`
	AreaID   string     `json:"area_id"`
	Label    string     `json:"label"`
	Position [2]float64 `json:"position"`
	Width    float64    `json:"width"`
	Exit     bool       `json:"exit"`
}

// Stair2D is a stair marker.
type Stair2D struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position [2]float64 `json:"position"`
	ToLevel  string     `json:"to_level,omitempty"`
}

// Path2D is one walkable link of the navigation graph.
type Path2D struct {
	Start  [2]float64 `json:"start"`
	End    [2]float64 `json:"end"`
	Length float64    `json:"length"`
	Exit   bool       `json:"exit"` // leads to an exit door
}

// Agent2D is an occupant marker.
type Agent2D struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profile_id"`
	Position  [2]float64 `json:"position"`
	State     string     `json:"state"`
	Color     string     `json:"color,omitempty"`
}
