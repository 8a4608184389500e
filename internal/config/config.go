package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	OpenAI OpenAIConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

type AuthConfig struct {
	IdentityBaseURL string   // 外部身份服務的位址
	IdentityAPIKey  string   // 身份服務的 API key
	AdminEmails     []string // 允許當主持人的 email 清單
	JWTSecret       string
	HashPasswords   bool // 是否以 bcrypt 保存觀眾密碼，預設沿用明文比對
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./internal/config")

	viper.SetDefault("server.address", ":5174")
	viper.SetDefault("openai.baseurl", "https://api.openai.com/v1")
	viper.SetDefault("openai.apikey", "")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.6)
	viper.SetDefault("auth.identitybaseurl", "https://identitytoolkit.googleapis.com/v1")
	viper.SetDefault("auth.identityapikey", "")
	viper.SetDefault("auth.jwtsecret", "")

	// 秘密一律允許用環境變數覆蓋，不必寫進配置文件
	viper.BindEnv("openai.apikey", "OPENAI_API_KEY")
	viper.BindEnv("auth.identityapikey", "FIREBASE_API_KEY")
	viper.BindEnv("auth.jwtsecret", "JWT_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
