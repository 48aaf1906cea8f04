package notifyservice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBroker struct {
	connectCalls int
	closeCalls   int
	connectErr   error
}

func (b *fakeBroker) Connect() error {
	b.connectCalls++
	return b.connectErr
}

func (b *fakeBroker) Close() error {
	b.closeCalls++
	return nil
}

type fakeRunner struct {
	startCalls int
	stopCalls  int
	startErr   error
}

func (r *fakeRunner) Start() error {
	r.startCalls++
	return r.startErr
}

func (r *fakeRunner) Stop() {
	r.stopCalls++
}

func TestServiceLifecycle(t *testing.T) {
	broker := &fakeBroker{}
	runner := &fakeRunner{}
	s := NewService(broker, runner, testLogger())

	assert.False(t, s.IsInitialized())

	s.Initialize()
	assert.True(t, s.IsInitialized())
	assert.Equal(t, 1, broker.connectCalls)
	assert.Equal(t, 1, runner.startCalls)

	// A second Initialize is a no-op.
	s.Initialize()
	assert.Equal(t, 1, broker.connectCalls)
	assert.Equal(t, 1, runner.startCalls)

	s.Shutdown()
	assert.False(t, s.IsInitialized())
	assert.Equal(t, 1, runner.stopCalls)
	assert.Equal(t, 1, broker.closeCalls)

	// A second Shutdown is a no-op.
	s.Shutdown()
	assert.Equal(t, 1, runner.stopCalls)
	assert.Equal(t, 1, broker.closeCalls)
}

// A connection failure leaves the service uninitialized without surfacing an
// error: notifications degrade, the host process keeps serving.
func TestServiceInitializeBrokerFailure(t *testing.T) {
	broker := &fakeBroker{connectErr: errors.New("amqp unreachable")}
	runner := &fakeRunner{}
	s := NewService(broker, runner, testLogger())

	assert.NotPanics(t, s.Initialize)
	assert.False(t, s.IsInitialized())
	assert.Equal(t, 0, runner.startCalls)

	// A later Initialize retries the connection.
	broker.connectErr = nil
	s.Initialize()
	assert.True(t, s.IsInitialized())
	assert.Equal(t, 1, runner.startCalls)
}

func TestServiceShutdownWithoutInitialize(t *testing.T) {
	broker := &fakeBroker{}
	runner := &fakeRunner{}
	s := NewService(broker, runner, testLogger())

	s.Shutdown()
	assert.Equal(t, 0, runner.stopCalls)
	assert.Equal(t, 0, broker.closeCalls)
}

func TestServiceWorkerStartFailure(t *testing.T) {
	broker := &fakeBroker{}
	runner := &fakeRunner{startErr: errors.New("consume failed")}
	s := NewService(broker, runner, testLogger())

	s.Initialize()
	assert.False(t, s.IsInitialized())
}
