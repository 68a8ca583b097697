package cyclerecorder

import (
	"os"
	"strconv"
)

// envPrefix namespaces every recorder variable, e.g. REMINDER_CYCLES_INFLUX_URL.
const envPrefix = "REMINDER_CYCLES_"

type Config struct {
	Disabled bool
	InfluxDB InfluxDBConfig
	BigQuery BigQueryConfig
}

type InfluxDBConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Configured reports whether writes can be attempted.
func (c InfluxDBConfig) Configured() bool {
	return c.Token != "" && c.Org != ""
}

type BigQueryConfig struct {
	ProjectID string
	Dataset   string
	Table     string
}

func LoadConfig() *Config {
	disabled, _ := strconv.ParseBool(lookupEnv("DISABLED", "false"))

	return &Config{
		Disabled: disabled,
		InfluxDB: InfluxDBConfig{
			URL:    lookupEnv("INFLUX_URL", "http://localhost:8086"),
			Token:  lookupEnv("INFLUX_TOKEN", ""),
			Org:    lookupEnv("INFLUX_ORG", ""),
			Bucket: lookupEnv("INFLUX_BUCKET", "reminder_cycles"),
		},
		BigQuery: BigQueryConfig{
			ProjectID: lookupEnv("BQ_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT")),
			Dataset:   lookupEnv("BQ_DATASET", "task_reminder"),
			Table:     lookupEnv("BQ_TABLE", "cycles"),
		},
	}
}

func lookupEnv(name, fallback string) string {
	if v := os.Getenv(envPrefix + name); v != "" {
		return v
	}
	return fallback
}
