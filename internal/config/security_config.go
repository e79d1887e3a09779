package config

import "time"

const (
	sessionMaxAgeVar = "SESSION_MAX_AGE"
	loginUserVar     = "LOGIN_USERNAME"
	loginPasswordVar = "LOGIN_PASSWORD"
)

type Security struct {
	file *File
}

var _ SecurityConfig = Security{}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration(sessionMaxAgeVar, 24*time.Hour)
}

func (Security) GetSessionSweepInterval() time.Duration {
	return 5 * time.Minute
}

func (Security) GetSessionCookieName() string {
	return "session"
}

// GetLoginUsername and GetLoginPassword feed the placeholder identity
// provider. They are not a real user store.
func (s Security) GetLoginUsername() string {
	if s.file != nil && s.file.Login.Username != "" {
		return GetEnv(loginUserVar, s.file.Login.Username)
	}
	return GetEnv(loginUserVar, "user_good")
}

func (Security) GetLoginPassword() string {
	return GetEnv(loginPasswordVar, "pass_good")
}
