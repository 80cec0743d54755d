package entities

// SupervisionConfig describes one supervised execution: the command to run
// and the processor-time budget armed inside it, plus the output settings
// used by the report sink. TimeoutMs is always handed to the supervisor
// already normalized; a raw "0" input is mapped to the effectively-unlimited
// value by the config reader, never passed through literally.
type SupervisionConfig struct {
	Command   []string `mapstructure:"command" validate:"required,dive,required"`
	TimeoutMs uint32   `mapstructure:"timeout_ms"`
	StatsPath string   `mapstructure:"stats"`
	Delimiter string   `mapstructure:"delimiter" validate:"lt=20"`
	Verbose   bool     `mapstructure:"verbose"`
}
