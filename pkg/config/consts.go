package config

// EnvPrefix is handed to envconfig; individual fields carry fully
// qualified names so the prefix stays cosmetic.
const EnvPrefix = "BOIGHOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BOIGHOR_DB_DSN"
	EnvDBHost = "BOIGHOR_DB_HOST"
	EnvDBUser = "BOIGHOR_DB_USER"
	EnvDBName = "BOIGHOR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
