package config

import (
	"fmt"
	"time"

	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"github.com/Behyna/payment-services/esewagateway/pkg/mq"
	"github.com/Behyna/payment-services/esewagateway/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API      API          `mapstructure:"api"`
	Database mysql.Config `mapstructure:"database"`
	MQ       mq.Config    `mapstructure:"mq"`
	Esewa    esewa.Config `mapstructure:"esewa"`
}

type API struct {
	Port string `mapstructure:"port"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	setDefaults()

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("esewa.mode", esewa.ModeUAT)
	viper.SetDefault("esewa.timeout", 10*time.Second)

	for mode, endpoints := range esewa.DefaultEndpoints() {
		viper.SetDefault("esewa.endpoints."+mode+".form", endpoints.Form)
		viper.SetDefault("esewa.endpoints."+mode+".status_check", endpoints.StatusCheck)
	}
}
