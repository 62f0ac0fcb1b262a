package models

// Values accepted by the enumerated fields of request payloads.
var (
	TargetModuleEnum = []interface{}{"pir", "competencias", "desempenho", "pdi"}
	MetricTypeEnum   = []interface{}{
		"page_view",
		"time_on_page",
		"step_completion",
		"form_submission",
		"error_count",
		"satisfaction_rating",
		"task_completion_time",
	}
)
