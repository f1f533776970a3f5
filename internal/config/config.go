package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"DonorLinkBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:"donorlink"`
	} `yaml:"mongo"`
	Auth struct {
		Secret        string `yaml:"secret" env:"AUTH_TOKEN_SECRET" env-default:""`
		Issuer        string `yaml:"issuer" env-default:"donorlink"`
		TokenTTLHours int    `yaml:"token_ttl_hours" env-default:"24"`
	} `yaml:"auth"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"3005"`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
