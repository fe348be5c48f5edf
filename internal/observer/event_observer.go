package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ExportEvent represents a report export event
type ExportEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ExportID       string                 `json:"export_id"`
	Mode           string                 `json:"mode"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	Dropped        int                    `json:"dropped,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of export event
type EventType string

const (
	// ExportStarted when a render is accepted
	ExportStarted EventType = "export_started"
	// ExportCompleted when the PNG has been produced
	ExportCompleted EventType = "export_completed"
	// ExportFailed when validation, rendering or encoding fails
	ExportFailed EventType = "export_failed"
	// ArchiveFailed when a produced PNG could not be stored
	ArchiveFailed EventType = "archive_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ExportEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ExportEvent)
}

// LoggingObserver logs export events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles export events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ExportEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"export_id":          event.ExportID,
		"mode":               event.Mode,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}

	if event.Dropped > 0 {
		fields["dropped"] = event.Dropped
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ExportStarted:
		o.logger.WithFields(fields).Debug("Report export started")
	case ExportCompleted:
		o.logger.WithFields(fields).Info("Report export completed")
	case ExportFailed:
		o.logger.WithFields(fields).Error("Report export failed")
	case ArchiveFailed:
		o.logger.WithFields(fields).Warn("Report archive failed")
	default:
		o.logger.WithFields(fields).Info("Export event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects metrics from export events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalExports        int64
	successfulExports   int64
	failedExports       int64
	archiveFailures     int64
	droppedBlocks       int64
	exportsByMode       map[string]int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{exportsByMode: make(map[string]int64)}
}

// OnEvent handles export events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ExportEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ExportStarted:
		o.totalExports++
	case ExportCompleted:
		o.successfulExports++
		o.exportsByMode[event.Mode]++
		o.droppedBlocks += int64(event.Dropped)
		o.totalProcessingTime += event.ProcessingTime
	case ExportFailed:
		o.failedExports++
	case ArchiveFailed:
		o.archiveFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulExports > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulExports)
	}

	byMode := make(map[string]int64, len(o.exportsByMode))
	for k, v := range o.exportsByMode {
		byMode[k] = v
	}

	return map[string]interface{}{
		"total_exports":          o.totalExports,
		"successful_exports":     o.successfulExports,
		"failed_exports":         o.failedExports,
		"archive_failures":       o.archiveFailures,
		"dropped_blocks":         o.droppedBlocks,
		"exports_by_mode":        byMode,
		"avg_processing_time_ms": float64(avgProcessingTime.Microseconds()) / 1000,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer concurrently and
// returns once all of them have handled it
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ExportEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var wg sync.WaitGroup
	for _, observer := range observers {
		wg.Add(1)
		go func(obs Observer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
	wg.Wait()
}
