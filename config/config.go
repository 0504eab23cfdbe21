package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	RecentAnswers int
	Debug         bool
}

// ParseFlags reads configuration from command line flags, falling back on
// environment variables (a .env file is honored when present).
func ParseFlags() (cfg Config, err error) {
	godotenv.Load()

	var host string
	flag.StringVar(&host, "host", envString("HOST", "0.0.0.0"), "listen host name")
	var port uint
	flag.UintVar(&port, "port", envUint("PORT", 8080), "listen port number")
	flag.StringVar(&cfg.DBUrl, "db-url", envString("DB_URL", "openpulse.sqlite"), "path to SQLite3 DB file")
	flag.StringVar(&cfg.TokenSecret, "token-secret", envString("TOKEN_SECRET", ""), "secret key for token signing")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", envUint("TOKEN_TTL", 86400), "token TTL in seconds")
	var recent uint
	flag.UintVar(&recent, "recent-answers", envUint("RECENT_ANSWERS", 5), "number of recent text answers in results")
	flag.BoolVar(&cfg.Debug, "debug", envString("DEBUG", "") != "", "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.RecentAnswers = int(recent)

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint) uint {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return fallback
}
