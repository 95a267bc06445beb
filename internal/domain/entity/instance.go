package entity

// InstanceClass describes one size of an instance family.
// Units is proportional to the on-demand price inside the family.
type InstanceClass struct {
	Type   string  `json:"type"`
	Family string  `json:"family"`
	Size   string  `json:"size"`
	Units  float64 `json:"units"`
}
