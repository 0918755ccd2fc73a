package config

// Settings contains the application config
type Settings struct {
	Port        int    `env:"PORT"`
	MonPort     int    `env:"MON_PORT"`
	EnablePprof bool   `env:"ENABLE_PPROF"`
	LogLevel    string `env:"LOG_LEVEL"`
	ServiceName string `env:"SERVICE_NAME"`

	WebhookSecret string `env:"WEBHOOK_SECRET"`

	MotiveAPIURL string `env:"MOTIVE_API_URL"`
	MotiveAPIKey string `env:"MOTIVE_API_KEY"`

	TelegramAPIURL   string `env:"TELEGRAM_API_URL"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	AlertQueueSize   int `env:"ALERT_QUEUE_SIZE"`
	AlertWorkerCount int `env:"ALERT_WORKER_COUNT"`
	UnitCacheSize    int `env:"UNIT_CACHE_SIZE"`
}
