// Package fixtures loads the seed state every panel starts from.
package fixtures

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"hostpanel/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type Nginx struct {
	Config       string              `yaml:"config"`
	VirtualHosts []model.VirtualHost `yaml:"virtual_hosts"`
	Modules      []model.NginxModule `yaml:"modules"`
}

type PHP struct {
	Extensions []model.Toggle `yaml:"extensions"`
	PoolConfig string         `yaml:"pool_config"`
	INI        string         `yaml:"ini"`
}

type MySQL struct {
	Plugins   []model.Toggle   `yaml:"plugins"`
	Databases []model.Database `yaml:"databases"`
	Users     []model.DBUser   `yaml:"users"`
	Config    string           `yaml:"config"`
}

// Activity is a seeded history entry; Age is relative to process start.
type Activity struct {
	Activity string             `yaml:"activity"`
	Type     model.ActivityType `yaml:"type"`
	Service  string             `yaml:"service"`
	Details  string             `yaml:"details"`
	Age      time.Duration      `yaml:"age"`
}

type Log struct {
	Level   model.LogLevel `yaml:"level"`
	Service string         `yaml:"service"`
	Message string         `yaml:"message"`
	Age     time.Duration  `yaml:"age"`
}

type Stats struct {
	ResourceUsage       []model.ResourcePoint        `yaml:"resource_usage"`
	ServiceRequests     []model.ServicePoint         `yaml:"service_requests"`
	TrafficDistribution []model.Share                `yaml:"traffic_distribution"`
	ErrorRates          []model.ServicePoint         `yaml:"error_rates"`
	RangeFactor         map[model.StatsRange]float64 `yaml:"range_factor"`
}

type Seed struct {
	Nginx      Nginx          `yaml:"nginx"`
	PHP        PHP            `yaml:"php"`
	MySQL      MySQL          `yaml:"mysql"`
	Activities []Activity     `yaml:"activities"`
	Logs       []Log          `yaml:"logs"`
	Stats      Stats          `yaml:"stats"`
	Settings   model.Settings `yaml:"settings"`
}

// Load decodes the embedded seed. Every call returns a fresh copy.
func Load() (*Seed, error) {
	return Parse(seedYAML)
}

func Parse(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for _, a := range seed.Activities {
		if !a.Type.Valid() {
			return nil, fmt.Errorf("seed activity %q: invalid type %q", a.Activity, a.Type)
		}
	}

	return &seed, nil
}

// MustLoad is Load for process start-up, where a broken embedded seed is a
// build defect.
func MustLoad() *Seed {
	seed, err := Load()
	if err != nil {
		panic(err)
	}
	return seed
}
