// Package config loads the testbed configuration: the task set, the cyclic
// schedule table and the runtime options. Everything has a default matching
// the reference workload, so an empty file (or no file at all) yields the
// reference configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/StillLYOU/IL2235-lab1/core"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no explicit
// path is given.
const EnvConfigPath = "RTSCHED_CONFIG"

// Config is the YAML document root.
type Config struct {
	Model string `yaml:"model"` // "cyclic" or "rate_monotonic"

	Tasks    []TaskConfig   `yaml:"tasks"`
	Schedule ScheduleConfig `yaml:"schedule"`

	LogCapacity int           `yaml:"log_capacity"`
	Sensor      SensorConfig  `yaml:"sensor"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// TaskConfig describes one periodic task.
type TaskConfig struct {
	ID       string `yaml:"id"` // single letter A..F
	PeriodUS int64  `yaml:"period_us"`
	// NominalUS is the fixed execution duration; ignored when Variable.
	NominalUS int64 `yaml:"nominal_us"`
	Variable  bool  `yaml:"variable"`
}

// ScheduleConfig describes the cyclic schedule table. Frames list task IDs
// in execution order.
type ScheduleConfig struct {
	MinorFrameUS int64      `yaml:"minor_frame_us"`
	Frames       [][]string `yaml:"frames"`
}

// SensorConfig describes the variable-duration input.
type SensorConfig struct {
	// Value is the fixed 8-bit reading used by the demo sensor stand-in.
	Value    uint8 `yaml:"value"`
	MaxUS    int64 `yaml:"max_us"`
	MarginUS int64 `yaml:"margin_us"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Default returns the reference configuration: the six tasks from the lab
// workload and the hand-derived 20-frame schedule.
func Default() *Config {
	tasks := core.DefaultTaskSet()
	table := core.DefaultScheduleTable()
	scale := core.DefaultSensorScale()

	cfg := &Config{
		Model:       "cyclic",
		LogCapacity: core.DefaultLogCapacity,
		Sensor:      SensorConfig{Value: 64, MaxUS: scale.Max, MarginUS: scale.Margin},
		Metrics:     MetricsConfig{Enabled: false, Listen: ":2112"},
		Schedule:    ScheduleConfig{MinorFrameUS: table.MinorFrame},
	}

	for _, t := range tasks {
		cfg.Tasks = append(cfg.Tasks, TaskConfig{
			ID:        idLetter(t.ID),
			PeriodUS:  t.Period,
			NominalUS: t.Nominal,
			Variable:  t.Variable,
		})
	}

	for _, frame := range table.Frames {
		ids := make([]string, len(frame.Tasks))
		for i, id := range frame.Tasks {
			ids[i] = idLetter(id)
		}
		cfg.Schedule.Frames = append(cfg.Schedule.Frames, ids)
	}

	return cfg
}

// Load reads the configuration from path. An empty path falls back to the
// RTSCHED_CONFIG environment variable, and when that is unset too the
// defaults are returned. Fields omitted from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if _, _, err := cfg.Build(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build materializes the task set and schedule table and validates them.
func (c *Config) Build() ([]core.Task, core.ScheduleTable, error) {
	if len(c.Tasks) == 0 {
		return nil, core.ScheduleTable{}, fmt.Errorf("config has no tasks")
	}

	tasks := make([]core.Task, 0, len(c.Tasks))
	for _, tc := range c.Tasks {
		id, err := parseTaskID(tc.ID)
		if err != nil {
			return nil, core.ScheduleTable{}, err
		}
		if tc.PeriodUS <= 0 {
			return nil, core.ScheduleTable{}, fmt.Errorf("task %s: period must be positive", tc.ID)
		}
		tasks = append(tasks, core.Task{
			ID:       id,
			Name:     id.String(),
			Period:   tc.PeriodUS,
			Deadline: tc.PeriodUS,
			Nominal:  tc.NominalUS,
			Variable: tc.Variable,
		})
	}
	tasks = core.AssignRateMonotonic(tasks)

	table := core.ScheduleTable{MinorFrame: c.Schedule.MinorFrameUS}
	for _, ids := range c.Schedule.Frames {
		frame := core.Frame{}
		for _, s := range ids {
			id, err := parseTaskID(s)
			if err != nil {
				return nil, core.ScheduleTable{}, err
			}
			frame.Tasks = append(frame.Tasks, id)
		}
		table.Frames = append(table.Frames, frame)
	}

	if c.Model != "rate_monotonic" {
		if err := table.Validate(tasks); err != nil {
			return nil, core.ScheduleTable{}, fmt.Errorf("schedule: %w", err)
		}
	}

	return tasks, table, nil
}

// Scale returns the configured sensor scale.
func (c *Config) Scale() core.SensorScale {
	return core.SensorScale{Max: c.Sensor.MaxUS, Margin: c.Sensor.MarginUS}
}

func idLetter(id core.TaskID) string {
	return strings.TrimPrefix(id.String(), "Task_")
}

func parseTaskID(s string) (core.TaskID, error) {
	switch strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "Task_")) {
	case "A":
		return core.TaskA, nil
	case "B":
		return core.TaskB, nil
	case "C":
		return core.TaskC, nil
	case "D":
		return core.TaskD, nil
	case "E":
		return core.TaskE, nil
	case "F":
		return core.TaskF, nil
	default:
		return 0, fmt.Errorf("unknown task id %q", s)
	}
}
