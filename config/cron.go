package config

import (
	"storefront.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"guestcartcleanup": {Schedule: "0 * * * *", Job: jobs.GuestCartCleanupJob},
	// Add more jobs here
}
