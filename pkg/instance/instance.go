package instance

import "os"

// ID names the running process in log fields. DYNO is set on Heroku; WORKER_ID is set
// by the worker deployment.
func ID() string {
	for _, key := range []string{"DYNO", "WORKER_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
