package notification

import (
	"context"
	"testing"

	"teamtodo-backend/internal/notification/domain"
	"teamtodo-backend/pkg/firestoreevent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) HandleEvent(ctx context.Context, eventType, contentType string, data []byte) (domain.Outcome, error) {
	args := m.Called(ctx, eventType, contentType, data)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

func TestListener_HandleMessage(t *testing.T) {
	handler := new(MockEventHandler)
	handler.On("HandleEvent", mock.Anything, firestoreevent.TypeCreated, firestoreevent.ContentTypeProtobuf, []byte(`{}`)).Return(domain.OutcomeSent, nil).Once()
	handler.On("HandleEvent", mock.Anything, firestoreevent.TypeUpdated, "", []byte(`{bad`)).Return(domain.Outcome(""), firestoreevent.ErrMalformedEvent).Once()

	l := &Listener{handler: handler, subName: "task-events"}
	l.handleMessage(context.Background(), "m1", firestoreevent.TypeCreated, firestoreevent.ContentTypeProtobuf, []byte(`{}`))
	l.handleMessage(context.Background(), "m2", firestoreevent.TypeUpdated, "", []byte(`{bad`))

	handler.AssertExpectations(t)
	assert.Equal(t, 2, len(handler.Calls))
}

func TestMessageContentType(t *testing.T) {
	assert.Equal(t, firestoreevent.ContentTypeJSON, messageContentType(map[string]string{"content-type": firestoreevent.ContentTypeJSON}))
	assert.Equal(t, firestoreevent.ContentTypeProtobuf, messageContentType(map[string]string{"ce-datacontenttype": firestoreevent.ContentTypeProtobuf}))
	assert.Equal(t, "", messageContentType(nil))
}
