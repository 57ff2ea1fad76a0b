package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	DBName                  string
	JWTSecret               string
	RedisAddr               string
	FirebaseCredentialsPath string
	FirebaseBucket          string
	UploadDir               string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "4444"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		DBName:                  getEnv("DB_NAME", "fotitos"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseBucket:          getEnv("FIREBASE_BUCKET", ""),
		UploadDir:               getEnv("UPLOAD_DIR", "public/uploads"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
