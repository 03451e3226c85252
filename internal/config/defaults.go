package config

const (
	defaultConfigPath            = "~/.config/batt_reminder.toml"
	defaultCapacityPath          = "/sys/class/power_supply/BAT1/capacity"
	defaultStatusPath            = "/sys/class/power_supply/BAT1/status"
	defaultCriticalPercent       = 30
	defaultLowPercent            = 45
	defaultNearDeadPercent       = 10
	defaultNormalInterval        = 300
	defaultFastInterval          = 5
	defaultCriticalInterval      = 120
	defaultPlugInterval          = 2
	defaultNearDeadDelay         = 15
	defaultAudioPlayer           = "paplay"
	defaultNotifyBackend         = BackendDBus
	defaultNotifyBinary          = "notify-send"
	defaultNotifyAppName         = "batt-reminder"
	defaultNotifyReplaceID       = 2592
	defaultNotifyExpireMillis    = 10000
	defaultNotifyRequestTimeout  = 10
	defaultLockPath              = "/tmp/batt_file_lock.lock"
	defaultSignalCheckIntervalMS = 1000
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultMetricsFlushInterval  = 30

	audioDisabled = "none"

	// SessionAny matches every desktop session.
	SessionAny = "any"
)

// Notification backends.
const (
	BackendDBus = "dbus"
	BackendExec = "exec"
	BackendNone = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Battery: Battery{
			CapacityPath: defaultCapacityPath,
			StatusPath:   defaultStatusPath,
			Critical:     defaultCriticalPercent,
			Low:          defaultLowPercent,
			NearDead:     defaultNearDeadPercent,
		},
		Intervals: Intervals{
			Normal:   defaultNormalInterval,
			Fast:     defaultFastInterval,
			Critical: defaultCriticalInterval,
		},
		Plug: Plug{
			Enabled:  true,
			Interval: defaultPlugInterval,
		},
		Commands: Commands{
			NearDeadDelay: defaultNearDeadDelay,
		},
		Audio: Audio{
			Path:   audioDisabled,
			Player: defaultAudioPlayer,
		},
		Notifications: Notifications{
			Backend:        defaultNotifyBackend,
			Binary:         defaultNotifyBinary,
			AppName:        defaultNotifyAppName,
			ReplaceID:      defaultNotifyReplaceID,
			ExpireMillis:   defaultNotifyExpireMillis,
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Session: Session{
			Targets: []string{SessionAny},
		},
		Daemon: Daemon{
			LockPath:              defaultLockPath,
			SignalCheckIntervalMS: defaultSignalCheckIntervalMS,
			WatchConfig:           true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Metrics: Metrics{
			FlushInterval: defaultMetricsFlushInterval,
		},
	}
}
