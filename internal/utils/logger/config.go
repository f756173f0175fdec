// internal/utils/logger/config.go
package logger

type Config struct {
	LogFile     string // пусто - без файла
	MaxSize     int    // мегабайты
	MaxAge      int    // дни
	MaxBackups  int    // количество файлов
	Compress    bool   // сжимать ротированные файлы
	Development bool

	// Console выключается, когда терминал занят TUI
	Console bool
	// Ring - кольцевой буфер последних записей для TUI, может быть nil
	Ring *Ring
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "dashboard.log",
		MaxSize:     100,  // 100 MB
		MaxAge:      7,    // 7 дней
		MaxBackups:  3,    // 3 файла
		Compress:    true, // сжимать старые логи
		Development: false,
		Console:     true,
	}
}
