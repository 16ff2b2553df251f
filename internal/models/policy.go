package models

// Policy binds a node to the task that provisions it.
type Policy struct {
	Name     string `json:"name"`
	TaskName string `json:"task"`
	Enabled  bool   `json:"enabled"`
}

// Task produces boot template names for nodes bound to a policy.
// BootSeq keys are decimal boot counts or "default".
type Task struct {
	Name        string            `json:"name" mapstructure:"name"`
	Description string            `json:"description,omitempty" mapstructure:"description"`
	BootSeq     map[string]string `json:"boot_seq" mapstructure:"boot_seq"`
}
