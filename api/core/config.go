package core

type APIConfig struct {
	Port           uint32   `json:"port" mapstructure:"port"`
	PathPrefix     string   `json:"pathPrefix" mapstructure:"pathPrefix"`
	AllowedHeaders []string `json:"allowedHeaders" mapstructure:"allowedHeaders"`
	AllowedOrigins []string `json:"allowedOrigins" mapstructure:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods" mapstructure:"allowedMethods"`
	APIKeyHeader   string   `json:"apiKeyHeader" mapstructure:"apiKeyHeader"`
	APIKeys        []string `json:"apiKeys" mapstructure:"apiKeys"`
}

// IsEnabled is false when no port is configured
func (c APIConfig) IsEnabled() bool {
	return c.Port != 0
}
