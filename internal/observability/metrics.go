package observability

import (
	"strconv"
	"sync"
	"time"
)

// MetricType classifies how a metric value is accumulated.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is one named series with its labels.
type Metric struct {
	Name      string                 `json:"name"`
	Type      MetricType             `json:"type"`
	Value     float64                `json:"value"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// MetricsCollector keeps in-process counters, gauges and simple
// histograms, exposed on the /metrics endpoint.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

func metricKey(name string, labels map[string]string) string {
	key := name
	for k, v := range labels {
		key += "." + k + "=" + v
	}
	return key
}

// Inc increments a counter by one.
func (mc *MetricsCollector) Inc(name string, labels map[string]string) {
	mc.Add(name, 1, labels)
}

// Add adds a value to a counter.
func (mc *MetricsCollector) Add(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	if metric, exists := mc.metrics[key]; exists {
		metric.Value += value
		metric.Timestamp = time.Now()
		return
	}
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeCounter,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Set overwrites a gauge value.
func (mc *MetricsCollector) Set(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeGauge,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Observe records one histogram sample. The stored value is the
// running average; count and sum live in Extra.
func (mc *MetricsCollector) Observe(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	metric, exists := mc.metrics[key]
	if !exists {
		mc.metrics[key] = &Metric{
			Name:      name,
			Type:      MetricTypeHistogram,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
			Extra: map[string]interface{}{
				"count": 1.0,
				"sum":   value,
			},
		}
		return
	}
	count := 1.0
	sum := value
	if c, ok := metric.Extra["count"].(float64); ok {
		count = c + 1
	}
	if s, ok := metric.Extra["sum"].(float64); ok {
		sum = s + value
	}
	metric.Extra["count"] = count
	metric.Extra["sum"] = sum
	metric.Value = sum / count
	metric.Timestamp = time.Now()
}

// Get retrieves a metric by name and labels.
func (mc *MetricsCollector) Get(name string, labels map[string]string) (*Metric, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	metric, exists := mc.metrics[metricKey(name, labels)]
	return metric, exists
}

// GetAll returns a copy of the current metric map.
func (mc *MetricsCollector) GetAll() map[string]*Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*Metric, len(mc.metrics))
	for k, v := range mc.metrics {
		result[k] = v
	}
	return result
}

// Reset clears all metrics.
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = make(map[string]*Metric)
}

// Standard metric names.
const (
	MetricQuestionsTotal   = "agent_questions_total"
	MetricQuestionDuration = "agent_question_duration_seconds"
	MetricQuestionFailure  = "agent_questions_failure_total"

	MetricIntentRuleHits  = "intent_rule_classifications_total"
	MetricIntentModelHits = "intent_model_classifications_total"
	MetricIntentUnknown   = "intent_unknown_total"

	MetricGuardRejections = "sqlguard_rejections_total"
	MetricGuardLimitClamp = "sqlguard_limit_clamps_total"

	MetricLLMRequests = "llm_requests_total"
	MetricLLMDuration = "llm_request_duration_seconds"
	MetricLLMErrors   = "llm_errors_total"
	MetricLLMFallback = "llm_fallback_total"

	MetricDBQueries  = "database_queries_total"
	MetricDBDuration = "database_query_duration_seconds"
	MetricDBErrors   = "database_errors_total"

	MetricCacheHits   = "cache_hits_total"
	MetricCacheMisses = "cache_misses_total"

	MetricNewsFetches = "news_fetches_total"
	MetricNewsErrors  = "news_errors_total"

	MetricHTTPRequests = "http_requests_total"
	MetricHTTPDuration = "http_request_duration_seconds"
	MetricHTTPErrors   = "http_errors_total"

	MetricHTTPResponseSize = "http_response_size_bytes"
)

var globalMetrics = NewMetricsCollector()

// GetGlobalMetrics returns the process-wide collector.
func GetGlobalMetrics() *MetricsCollector {
	return globalMetrics
}

// RecordQuestionMetrics records the outcome of one answered question.
func RecordQuestionMetrics(kind string, duration time.Duration, success bool) {
	metrics := GetGlobalMetrics()
	labels := map[string]string{"kind": kind}

	metrics.Inc(MetricQuestionsTotal, labels)
	metrics.Observe(MetricQuestionDuration, duration.Seconds(), labels)
	if !success {
		metrics.Inc(MetricQuestionFailure, labels)
	}
}

// RecordLLMMetrics records one model call.
func RecordLLMMetrics(provider string, duration time.Duration, err error) {
	metrics := GetGlobalMetrics()
	labels := map[string]string{"provider": provider}

	metrics.Inc(MetricLLMRequests, labels)
	metrics.Observe(MetricLLMDuration, duration.Seconds(), labels)
	if err != nil {
		metrics.Inc(MetricLLMErrors, labels)
	}
}

// RecordDBMetrics records one database query.
func RecordDBMetrics(operation string, duration time.Duration, err error) {
	metrics := GetGlobalMetrics()
	labels := map[string]string{"operation": operation}

	metrics.Inc(MetricDBQueries, labels)
	metrics.Observe(MetricDBDuration, duration.Seconds(), labels)
	if err != nil {
		metrics.Inc(MetricDBErrors, labels)
	}
}

// RecordHTTPMetrics records one inbound HTTP request.
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration, responseSize int) {
	metrics := GetGlobalMetrics()
	labels := map[string]string{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(statusCode),
	}

	metrics.Inc(MetricHTTPRequests, labels)
	metrics.Observe(MetricHTTPDuration, duration.Seconds(), labels)
	if statusCode >= 400 {
		metrics.Inc(MetricHTTPErrors, labels)
	}
	if responseSize > 0 {
		metrics.Observe(MetricHTTPResponseSize, float64(responseSize), labels)
	}
}
