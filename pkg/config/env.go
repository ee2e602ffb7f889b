package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "STOCKPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STOCKPOS_DB_DSN"
	EnvDBHost = "STOCKPOS_DB_HOST"
	EnvDBUser = "STOCKPOS_DB_USER"
	EnvDBName = "STOCKPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
