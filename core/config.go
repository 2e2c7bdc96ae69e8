package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug                     bool
		TestMode                  bool
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		AppName                   string
		SecretKey                 string
		WorkDir                   string
		FrontendBaseURL           string
		DashboardDomain           string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string
		// TimeZone is the IANA name of the gym's wall clock ("Local" by default).
		TimeZone                  string

		Server     ServerConfig
		Database   DatabaseConfig
		Membership MembershipConfig
		Risk       RiskConfig
		Lockout    LockoutConfig
		Backup     BackupConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		CORSAllowOrigins          []string
		CardScanLogin             bool
		BillingWebhookSecret      string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	MembershipConfig struct {
		// CodeMatch is "exact" (default) or "upper".
		CodeMatch   string
		AccessCodes []AccessCodeConfig
		PlanPrices  map[string]string
	}

	AccessCodeConfig struct {
		Code            string `mapstructure:"code"`
		Plan            string `mapstructure:"plan"`
		TrialDays       int    `mapstructure:"trialDays"`
		DiscountPercent string `mapstructure:"discountPercent"`
		Description     string `mapstructure:"description"`
	}

	RiskConfig struct {
		LowThreshold  int
		HighThreshold int
	}

	LockoutConfig struct {
		MaxAttempts int
		Window      time.Duration
		MaxEntries  int
		RedisAddr   string // shares counters between instances when set; any server with scripting (2.6+)
	}

	BackupConfig struct {
		Dir       string
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}
)

// Location loads the time zone schedules and "today" are read in.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig loads the application configuration from defaults, an optional config file,
// an optional .env file and the environment (in that order of precedence, lowest first).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	workDir := v.GetString("workDir")
	if workDir == "" {
		workDir = Getwd()
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(workDir, "config"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("config.ReadInConfig: %v", err)
		}
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 v.GetString("secretKey"),
		WorkDir:                   workDir,
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DashboardDomain:           v.GetString("dashboardDomain"),
		DefaultFromEmail:          mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		TimeZone:                  v.GetString("timeZone"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			CORSAllowOrigins:          v.GetStringSlice("server.corsAllowOrigins"),
			CardScanLogin:             v.GetBool("server.cardScanLogin"),
			BillingWebhookSecret:      v.GetString("server.billingWebhookSecret"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Membership: MembershipConfig{
			CodeMatch:  v.GetString("membership.codeMatch"),
			PlanPrices: v.GetStringMapString("membership.planPrices"),
		},
		Risk: RiskConfig{
			LowThreshold:  v.GetInt("risk.lowThreshold"),
			HighThreshold: v.GetInt("risk.highThreshold"),
		},
		Lockout: LockoutConfig{
			MaxAttempts: v.GetInt("lockout.maxAttempts"),
			Window:      v.GetDuration("lockout.window"),
			MaxEntries:  v.GetInt("lockout.maxEntries"),
			RedisAddr:   v.GetString("lockout.redisAddr"),
		},
		Backup: BackupConfig{
			Dir:       v.GetString("backup.dir"),
			Endpoint:  v.GetString("backup.endpoint"),
			AccessKey: v.GetString("backup.accessKey"),
			SecretKey: v.GetString("backup.secretKey"),
			Bucket:    v.GetString("backup.bucket"),
			UseSSL:    v.GetBool("backup.useSSL"),
		},
	}

	if err := v.UnmarshalKey("membership.accessCodes", &conf.Membership.AccessCodes); err != nil {
		log.Fatalf("config.UnmarshalKey(membership.accessCodes): %v", err)
	}
	return conf
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "BJJ Pro Gym")
	v.SetDefault("secretKey", "qk2-v9)wz&bjj$+pro=gym&x7h(c!m)#*4t(#yg4h^$ceg1rol")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("dashboardDomain", "bjjprogym.com")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("timeZone", "Local")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.corsAllowOrigins", []string{"*"})
	v.SetDefault("server.cardScanLogin", true)
	v.SetDefault("server.billingWebhookSecret", "")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "bjjprogym")
	v.SetDefault("database.user", "bjjprogym")
	v.SetDefault("database.password", "bjjprogym")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("membership.codeMatch", "exact")
	v.SetDefault("membership.accessCodes", []map[string]interface{}{
		{
			"code":            "Adelynn14",
			"plan":            "professional",
			"trialDays":       30,
			"discountPercent": "0",
			"description":     "Professional Plan - Full Access",
		},
	})
	v.SetDefault("membership.planPrices", map[string]string{
		"starter":      "97",
		"professional": "197",
		"enterprise":   "397",
	})

	v.SetDefault("risk.lowThreshold", 7)
	v.SetDefault("risk.highThreshold", 14)

	v.SetDefault("lockout.maxAttempts", 5)
	v.SetDefault("lockout.window", 15*time.Minute)
	v.SetDefault("lockout.maxEntries", 10000)
	v.SetDefault("lockout.redisAddr", "")

	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.bucket", "bjjprogym-backups")
}

// Getwd tries to find the project root: the closest parent directory holding a go.mod
// (or the working directory itself when there is none, e.g. in a container image).
// go-test changes the working directory to the package being tested, which breaks relative paths.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
