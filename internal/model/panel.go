package model

import "time"

type ServiceStatus string

const (
	StatusActive   ServiceStatus = "active"
	StatusInactive ServiceStatus = "inactive"
	StatusWarning  ServiceStatus = "warning"
)

type ServiceInfo struct {
	Key       string        `json:"key"`
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	PID       int           `json:"pid"`
	Status    ServiceStatus `json:"status"`
	Uptime    string        `json:"uptime"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
}

type ResourceUsage struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
	Disk   int `json:"disk"`
}

type SystemStatus struct {
	Services  []ServiceInfo `json:"services"`
	Resources ResourceUsage `json:"resources"`
	At        time.Time     `json:"at"`
}

type VirtualHost struct {
	ID        int           `json:"id" yaml:"id"`
	Domain    string        `json:"domain" yaml:"domain"`
	Root      string        `json:"root" yaml:"root"`
	Status    ServiceStatus `json:"status" yaml:"status"`
	SSL       bool          `json:"ssl" yaml:"ssl"`
	SSLExpiry *string       `json:"ssl_expiry" yaml:"ssl_expiry"`
}

type NginxModule struct {
	ID          int           `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Status      ServiceStatus `json:"status" yaml:"status"`
	Version     string        `json:"version" yaml:"version"`
}

type InstallProgress struct {
	Module   string `json:"module"`
	Progress int    `json:"progress"`
	Done     bool   `json:"done"`
}

// Toggle is a named on/off switch: PHP extensions and MySQL plugins.
type Toggle struct {
	Name        string `json:"name" yaml:"name"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description" yaml:"description"`
}

type Database struct {
	Name      string `json:"name" yaml:"name"`
	Tables    int    `json:"tables" yaml:"tables"`
	Size      string `json:"size" yaml:"size"`
	Created   string `json:"created" yaml:"created"`
	Charset   string `json:"charset" yaml:"charset"`
	Collation string `json:"collation" yaml:"collation"`
}

type DBUser struct {
	Username       string `json:"username" yaml:"username"`
	Host           string `json:"host" yaml:"host"`
	Privileges     string `json:"privileges" yaml:"privileges"`
	Authentication string `json:"authentication" yaml:"authentication"`
	Database       string `json:"database" yaml:"database"`
}

type ActivityType string

const (
	ActivityInfo    ActivityType = "info"
	ActivityWarning ActivityType = "warning"
	ActivityError   ActivityType = "error"
	ActivitySuccess ActivityType = "success"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityInfo, ActivityWarning, ActivityError, ActivitySuccess:
		return true
	}
	return false
}

type Activity struct {
	ID        int64        `json:"id"`
	Activity  string       `json:"activity"`
	Type      ActivityType `json:"type"`
	Service   string       `json:"service"`
	Details   string       `json:"details,omitempty"`
	Actor     string       `json:"actor,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Time      string       `json:"time"`
}

type ActivityFilter struct {
	Type    string
	Service string
	Page    int
	Limit   int
}

type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

type LogEntry struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Service   string    `json:"service"`
	Message   string    `json:"message"`
}

type StatsRange string

const (
	RangeDay   StatsRange = "day"
	RangeWeek  StatsRange = "week"
	RangeMonth StatsRange = "month"
	RangeYear  StatsRange = "year"
)

type ResourcePoint struct {
	Name string `json:"name" yaml:"name"`
	CPU  int    `json:"cpu" yaml:"cpu"`
	RAM  int    `json:"ram" yaml:"ram"`
	Disk int    `json:"disk" yaml:"disk"`
}

type ServicePoint struct {
	Name  string `json:"name" yaml:"name"`
	Nginx int    `json:"nginx" yaml:"nginx"`
	PHP   int    `json:"php" yaml:"php"`
	MySQL int    `json:"mysql" yaml:"mysql"`
}

type Share struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type Statistics struct {
	Range               StatsRange      `json:"range"`
	ResourceUsage       []ResourcePoint `json:"resource_usage"`
	ServiceRequests     []ServicePoint  `json:"service_requests"`
	TrafficDistribution []Share         `json:"traffic_distribution"`
	ErrorRates          []ServicePoint  `json:"error_rates"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

type Profile struct {
	FullName string `json:"full_name" yaml:"full_name"`
	Email    string `json:"email" yaml:"email"`
}

type Preferences struct {
	Theme                string `json:"theme" yaml:"theme"`
	Language             string `json:"language" yaml:"language"`
	EmailNotifications   bool   `json:"email_notifications" yaml:"email_notifications"`
	BrowserNotifications bool   `json:"browser_notifications" yaml:"browser_notifications"`
	MaintenanceAlerts    bool   `json:"maintenance_alerts" yaml:"maintenance_alerts"`
}

type Settings struct {
	Profile         Profile     `json:"profile" yaml:"profile"`
	Preferences     Preferences `json:"preferences" yaml:"preferences"`
	BackupFrequency string      `json:"backup_frequency" yaml:"backup_frequency"`
	BackupSchedule  string      `json:"backup_schedule" yaml:"-"`
	LogLevel        string      `json:"log_level" yaml:"log_level"`
}
