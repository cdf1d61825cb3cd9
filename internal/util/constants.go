package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeCSV = "text/csv"
)

// 前端页面路径
const (
	PathAdmin               = "/admin"
	PathAdminPortal         = "/admin-portal"
	PathQuestionnaire       = "/questionnaire"
	PathQuestionnaireSelect = "/questionnaire-selector"
	PathHome                = "/"
)
