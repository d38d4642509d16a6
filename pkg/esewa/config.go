package esewa

import "time"

const (
	ModeUAT        = "uat"
	ModeProduction = "production"
)

type Endpoints struct {
	Form        string `mapstructure:"form"`
	StatusCheck string `mapstructure:"status_check"`
}

type Config struct {
	Mode        string               `mapstructure:"mode"`
	ProductCode string               `mapstructure:"product_code"`
	SecretKey   string               `mapstructure:"secret_key"`
	SuccessURL  string               `mapstructure:"success_url"`
	FailureURL  string               `mapstructure:"failure_url"`
	BaseURL     string               `mapstructure:"base_url"`
	Endpoints   map[string]Endpoints `mapstructure:"endpoints"`
	Timeout     time.Duration        `mapstructure:"timeout"`
}

// DefaultEndpoints returns the gateway endpoints published by eSewa for the
// v2 form protocol, keyed by deployment mode.
func DefaultEndpoints() map[string]Endpoints {
	return map[string]Endpoints{
		ModeUAT: {
			Form:        "https://rc-epay.esewa.com.np/api/epay/main/v2/form",
			StatusCheck: "https://rc.esewa.com.np/api/epay/transaction/status/",
		},
		ModeProduction: {
			Form:        "https://epay.esewa.com.np/api/epay/main/v2/form",
			StatusCheck: "https://epay.esewa.com.np/api/epay/transaction/status/",
		},
	}
}

func (c Config) endpoints() Endpoints {
	mode := c.Mode
	if mode == "" {
		mode = ModeUAT
	}

	if ep, ok := c.Endpoints[mode]; ok {
		return ep
	}

	return DefaultEndpoints()[mode]
}
