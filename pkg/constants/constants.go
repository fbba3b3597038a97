package constants

type ContextKey string

const (
	PoolKey    ContextKey = "pool"
	TxKey      ContextKey = "tx"
	TxHooksKey ContextKey = "tx_hooks"
	LoggerKey  ContextKey = "logger"
)
