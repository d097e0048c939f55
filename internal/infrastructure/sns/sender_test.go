package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/go-phone-auth/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageAttributes_Transactional(t *testing.T) {
	attrs := messageAttributes("")
	assert.Len(t, attrs, 1)
	assert.Equal(t, "Transactional", *attrs["AWS.SNS.SMS.SMSType"].StringValue)
}

func TestMessageAttributes_SenderID(t *testing.T) {
	attrs := messageAttributes("PHONEAUTH")
	assert.Equal(t, "PHONEAUTH", *attrs["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestLogSender_NeverFails(t *testing.T) {
	assert.NoError(t, LogSender{}.SendSMS(context.Background(), "5550100", "hi"))
}

func TestFallbackSender_Development(t *testing.T) {
	s, err := FallbackSender(&config.Config{AppEnv: "development"}, errors.New("no credentials"))
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)
}

func TestFallbackSender_ProductionRefuses(t *testing.T) {
	cause := errors.New("no credentials")
	s, err := FallbackSender(&config.Config{AppEnv: "production"}, cause)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, cause)
}
