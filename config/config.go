// config/config.go
package config

import (
	"log"
	"os"
	"time"
)

var (
	Port              string
	MongoURI          string
	DatabaseName      string
	JWTKey            []byte
	JWTExpiration     time.Duration
	UploadDir         string
	PublicBaseURL     string
	SchedulerInterval time.Duration
	MaxUploadBytes    int64
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	DatabaseName = os.Getenv("DB_NAME")
	if DatabaseName == "" {
		DatabaseName = "qualicontrol"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 24 * time.Hour
	if expireStr != "" {
		if expireStr == "7d" {
			dur = 7 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
				dur = 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	UploadDir = os.Getenv("UPLOAD_DIR")
	if UploadDir == "" {
		UploadDir = "./uploads"
	}

	PublicBaseURL = os.Getenv("PUBLIC_BASE_URL")
	if PublicBaseURL == "" {
		PublicBaseURL = "http://localhost:" + Port
	}

	SchedulerInterval = time.Minute
	if intervalStr := os.Getenv("REPORT_SCHEDULER_INTERVAL"); intervalStr != "" {
		parsed, err := time.ParseDuration(intervalStr)
		if err != nil {
			log.Printf("Invalid REPORT_SCHEDULER_INTERVAL: %s, using 1m", intervalStr)
		} else {
			SchedulerInterval = parsed
		}
	}

	// 25 MB, same cap the hosted bucket enforced on the old frontend
	MaxUploadBytes = 25 << 20
}
