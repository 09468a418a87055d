package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/migrascope/pkg/leaselock"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	queue string
	msg   amqp091.Publishing
}

type fakeChannel struct {
	declared  map[string]amqp091.Table
	published []published
	failWith  error
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp091.Table) (amqp091.Queue, error) {
	if f.declared == nil {
		f.declared = map[string]amqp091.Table{}
	}
	f.declared[name] = args
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, published{queue: key, msg: msg})
	return nil
}

type fakeAcker struct {
	acked, nacked, requeued int
}

func (a *fakeAcker) Ack(uint64, bool) error { a.acked++; return nil }
func (a *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}
func (a *fakeAcker) Reject(uint64, bool) error { return nil }

func TestSetupQueues(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, SetupQueues(ch, []string{ReportQueue}))

	assert.Len(t, ch.declared, 3)
	retry := ch.declared["report_queue_retry"]
	assert.Equal(t, int32(10000), retry["x-message-ttl"])
	assert.Equal(t, ReportQueue, retry["x-dead-letter-routing-key"])
	assert.Contains(t, ch.declared, "report_queue_dlq")
}

func TestReportJobRoundTrip(t *testing.T) {
	job, err := NewReportJob("a1")
	require.NoError(t, err)
	assert.Len(t, job.CorrelationID, 21)

	ch := &fakeChannel{}
	require.NoError(t, PublishReportJob(context.Background(), ch, job))
	require.Len(t, ch.published, 1)
	assert.Equal(t, ReportQueue, ch.published[0].queue)
	assert.Equal(t, amqp091.Persistent, ch.published[0].msg.DeliveryMode)

	decoded, err := DecodeReportJob(ch.published[0].msg.Body)
	require.NoError(t, err)
	assert.Equal(t, job.AssessmentID, decoded.AssessmentID)
	assert.Equal(t, job.CorrelationID, decoded.CorrelationID)
}

func TestDecodeReportJobRejects(t *testing.T) {
	for _, body := range []string{`not json`, `{"correlation_id":"c"}`, `{"assessment_id":" ","correlation_id":"c"}`, `{"assessment_id":"a"}`} {
		_, err := DecodeReportJob([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestHandleProcessingErrorRetries(t *testing.T) {
	ch := &fakeChannel{}
	acker := &fakeAcker{}
	msg := amqp091.Delivery{Acknowledger: acker, Body: []byte("{}"), Headers: amqp091.Table{retriesHeader: int64(2)}}

	HandleProcessingError(context.Background(), ch, msg, ReportQueue, 3, errors.New("transient"))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "report_queue_retry", ch.published[0].queue)
	assert.Equal(t, int32(3), ch.published[0].msg.Headers[retriesHeader])
	assert.Equal(t, 1, acker.acked)
	assert.Equal(t, int64(2), msg.Headers[retriesHeader])
}

func TestHandleProcessingErrorDeadLetters(t *testing.T) {
	tests := []struct {
		name    string
		retries any
		cause   error
	}{
		{"exhausted", int32(3), errors.New("transient")},
		{"permanent", nil, Permanent(store.ErrAssessmentNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			acker := &fakeAcker{}
			msg := amqp091.Delivery{Acknowledger: acker, Headers: amqp091.Table{}}
			if tt.retries != nil {
				msg.Headers[retriesHeader] = tt.retries
			}

			HandleProcessingError(context.Background(), ch, msg, ReportQueue, 3, tt.cause)

			require.Len(t, ch.published, 1)
			assert.Equal(t, "report_queue_dlq", ch.published[0].queue)
			assert.Equal(t, tt.cause.Error(), ch.published[0].msg.Headers["x-error"])
			assert.Equal(t, 1, acker.acked)
		})
	}
}

func TestHandleProcessingErrorRequeuesWhenPublishFails(t *testing.T) {
	ch := &fakeChannel{failWith: errors.New("channel closed")}
	acker := &fakeAcker{}

	HandleProcessingError(context.Background(), ch, amqp091.Delivery{Acknowledger: acker}, ReportQueue, 3, errors.New("x"))

	assert.Zero(t, acker.acked)
	assert.Equal(t, 1, acker.requeued)
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))
	err := Permanent(store.ErrAssessmentNotFound)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, store.ErrAssessmentNotFound)
	assert.False(t, IsPermanent(errors.New("x")))
}

type fakeSnapshots map[string]model.Snapshot

func (f fakeSnapshots) LoadSnapshot(_ context.Context, id string) (model.Snapshot, error) {
	snap, ok := f[id]
	if !ok {
		return model.Snapshot{}, store.ErrAssessmentNotFound
	}
	return snap, nil
}

type fakeReports struct {
	mu      sync.Mutex
	records []store.ReportRecord
}

func (f *fakeReports) SaveReport(_ context.Context, rec store.ReportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeReports) LatestReport(context.Context, string) (store.ReportRecord, error) {
	return store.ReportRecord{}, store.ErrReportNotFound
}

type fakeArtifacts struct {
	failures int
	calls    int
	objects  map[string][]byte
}

func (f *fakeArtifacts) PutReport(_ context.Context, key string, body []byte) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("s3 unavailable")
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = body
	return "s3://bucket/" + key, nil
}

type fakeLocks struct {
	busy bool
	keys []string
}

func (f *fakeLocks) WithLease(ctx context.Context, key string, _ leaselock.Options, fn func(context.Context) error) error {
	f.keys = append(f.keys, key)
	if f.busy {
		return leaselock.ErrBusy
	}
	return fn(ctx)
}

type fakeFailures []string

func (f *fakeFailures) Failure(stage string) { *f = append(*f, stage) }

func newHandler(artifacts *fakeArtifacts, locks *fakeLocks) (*ReportHandler, *fakeReports, *fakeFailures) {
	reports := &fakeReports{}
	failures := &fakeFailures{}
	return &ReportHandler{
		Snapshots: fakeSnapshots{"a1": {
			AssessmentID: "a1",
			Objects:      []model.Object{{ID: "d1", Type: model.TypeDashboard, Name: "Sales"}},
		}},
		Reports:       reports,
		Artifacts:     artifacts,
		Locks:         locks,
		Engine:        report.NewEngine(),
		Metrics:       failures,
		UploadRetries: 3,
	}, reports, failures
}

func jobBody(t *testing.T, assessmentID string) []byte {
	body, err := json.Marshal(ReportJob{AssessmentID: assessmentID, CorrelationID: "c1"})
	require.NoError(t, err)
	return body
}

func TestReportHandlerStoresReport(t *testing.T) {
	artifacts := &fakeArtifacts{failures: 2}
	locks := &fakeLocks{}
	h, reports, failures := newHandler(artifacts, locks)

	require.NoError(t, h.Process(context.Background(), jobBody(t, "a1")))

	assert.Equal(t, []string{"report:a1"}, locks.keys)
	assert.Equal(t, 3, artifacts.calls)
	body, ok := artifacts.objects["reports/a1/c1.json"]
	require.True(t, ok)

	var rep report.Report
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, "a1", rep.AssessmentID)
	assert.Equal(t, 1, rep.Sections.Dashboards.Total)

	require.Len(t, reports.records, 1)
	assert.Equal(t, "s3://bucket/reports/a1/c1.json", reports.records[0].Location)
	assert.Equal(t, "c1", reports.records[0].CorrelationID)
	assert.Empty(t, *failures)
}

func TestReportHandlerFailures(t *testing.T) {
	t.Run("malformed job", func(t *testing.T) {
		h, _, _ := newHandler(&fakeArtifacts{}, &fakeLocks{})
		err := h.Process(context.Background(), []byte(`{`))
		assert.True(t, IsPermanent(err))
	})

	t.Run("unknown assessment", func(t *testing.T) {
		h, _, failures := newHandler(&fakeArtifacts{}, &fakeLocks{})
		err := h.Process(context.Background(), jobBody(t, "missing"))
		assert.True(t, IsPermanent(err))
		assert.ErrorIs(t, err, store.ErrAssessmentNotFound)
		assert.Equal(t, []string{"load"}, []string(*failures))
	})

	t.Run("lock busy", func(t *testing.T) {
		h, reports, failures := newHandler(&fakeArtifacts{}, &fakeLocks{busy: true})
		err := h.Process(context.Background(), jobBody(t, "a1"))
		assert.ErrorIs(t, err, leaselock.ErrBusy)
		assert.False(t, IsPermanent(err))
		assert.Empty(t, reports.records)
		assert.Equal(t, []string{"lock"}, []string(*failures))
	})

	t.Run("upload keeps failing", func(t *testing.T) {
		h, reports, failures := newHandler(&fakeArtifacts{failures: 5}, &fakeLocks{})
		err := h.Process(context.Background(), jobBody(t, "a1"))
		assert.ErrorContains(t, err, "upload report")
		assert.False(t, IsPermanent(err))
		assert.Empty(t, reports.records)
		assert.Equal(t, []string{"upload"}, []string(*failures))
	})
}
