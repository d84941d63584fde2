package publishers

// Logger is the object-logging surface publishers write delivery outcomes to.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// logDeliveryFailure records a failed send at error. A rejection, where the sink
// answered with an error status, logs at warn.
func logDeliveryFailure(log Logger, kind, id, predictionID string, rejected bool, fields map[string]any) {
	obj := map[string]any{
		"publisher":     kind,
		"publisher_id":  id,
		"prediction_id": predictionID,
	}
	for k, v := range fields {
		obj[k] = v
	}
	if rejected {
		log.WarnObj(kind+" publisher rejected event", "publisher_error", obj)
		return
	}
	log.ErrorObj(kind+" publisher send failed", "publisher_error", obj)
}

func logDelivered(log Logger, kind, id, predictionID, messageID string) {
	obj := map[string]any{
		"publisher":     kind,
		"publisher_id":  id,
		"prediction_id": predictionID,
	}
	if messageID != "" {
		obj["message_id"] = messageID
	}
	log.DebugObj(kind+" publisher delivered event", "publisher_delivery", obj)
}
