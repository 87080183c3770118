package config

import "fmt"

type DatabaseConfig struct {
	Type     string `yaml:"type" toml:"type"`         // mysql, postgres, sqlite
	Host     string `yaml:"host" toml:"host"`         // localhost
	Port     int    `yaml:"port" toml:"port"`         // 3306 (for mysql), 5432 (for postgres)
	User     string `yaml:"user" toml:"user"`         // root (for mysql), postgres (for postgres)
	Password string `yaml:"password" toml:"password"` // password
	DBName   string `yaml:"dbname" toml:"dbname"`     // database name, or file path for sqlite
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`   // disable (for postgres)
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}
