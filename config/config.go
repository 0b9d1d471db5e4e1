package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Lottery   LotteryConfigs  `toml:"lottery"`
	Oracle    OracleConfigs   `toml:"oracle"`
	Keeper    KeeperConfigs   `toml:"keeper"`
}

type DatabaseConfigs struct {
	// Driver is "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// File is used by the sqlite driver.
	File string `toml:"file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`

	// NodeID makes event ids unique across api servers, 0 to 1023.
	NodeID int64 `toml:"node_id"`
}

type RedisConfigs struct {
	Addr      string   `toml:"addr"`
	StatusKey string   `toml:"status_key"`
	StatusTTL Duration `toml:"status_ttl"`
}

type KafkaConfigs struct {
	// Addr is empty when events go through the in-process broker.
	Addr    string `toml:"addr"`
	Topic   string `toml:"topic"`
	GroupID string `toml:"group_id"`
}

type LotteryConfigs struct {
	// ProgramID namespaces every derived address of a deployment.
	ProgramID string `toml:"program_id"`

	// AuthorityKey is the hex encoded secp256k1 private key used by the CLI and
	// the keeper to sign authority instructions.
	AuthorityKey   string   `toml:"authority_key"`
	PlatformWallet string   `toml:"platform_wallet"`
	TicketPrice    uint64   `toml:"ticket_price"`
	PlatformFeeBps uint16   `toml:"platform_fee_bps"`
	RoundDuration  Duration `toml:"round_duration"`
}

type OracleConfigs struct {
	// Key signs ResolveDraw instructions. Its address must be the oracle stored
	// in the lottery state.
	Key string `toml:"key"`
}

type KeeperConfigs struct {
	Interval Duration `toml:"interval"`
}

// Duration lets TOML files use strings like "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver: "sqlite",
			File:   "settlement.db",
		},
		ApiServer: ServerConfigs{
			Host: "localhost",
			Port: "8080",
		},
		Redis: RedisConfigs{
			StatusKey: "settlement:status",
			StatusTTL: Duration{time.Minute},
		},
		Kafka: KafkaConfigs{
			Topic:   "settlement",
			GroupID: "settlement-oracle",
		},
		Lottery: LotteryConfigs{
			ProgramID:     "hastrology",
			RoundDuration: Duration{24 * time.Hour},
		},
		Keeper: KeeperConfigs{
			Interval: Duration{30 * time.Second},
		},
	}
}

// Load reads a TOML file on top of the default configs.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}
