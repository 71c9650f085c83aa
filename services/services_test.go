package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resendStub(t *testing.T, status int, body string, got *ResendEmailRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func mailerConfig(url string) map[string]string {
	return map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "Portfolio <contact@example.com>",
		"CONTACT_RECIPIENT": "owner@example.com, second@example.com",
		"RESEND_API_URL":    url,
	}
}

func TestMailer_SendContact(t *testing.T) {
	var got ResendEmailRequest
	server := resendStub(t, http.StatusOK, `{"id":"email_1"}`, &got)

	err := NewMailer(mailerConfig(server.URL)).SendContact(context.Background(), models.ContactMessage{
		Name:    "Ada <script>",
		Email:   "ada@example.com",
		Message: "Hello\nthere",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"owner@example.com", "second@example.com"}, got.To)
	assert.Equal(t, "ada@example.com", got.ReplyTo)
	assert.Contains(t, got.Subject, "Ada")
	assert.Contains(t, got.Html, "Ada &lt;script&gt;")
	assert.Contains(t, got.Html, "Hello<br>there")
}

func TestMailer_ProviderError(t *testing.T) {
	server := resendStub(t, http.StatusUnprocessableEntity, `{"message":"invalid from"}`, nil)

	err := NewMailer(mailerConfig(server.URL)).SendEmail(context.Background(), "s", "b", "")
	require.Error(t, err)
	assert.True(t, errs.IsServiceUnreachable(err))
	assert.Contains(t, err.(*errs.ApiErr).GetFullError(), "invalid from")
}

func TestMailer_MissingConfig(t *testing.T) {
	for _, key := range []string{"RESEND_API_KEY", "RESEND_FROM_EMAIL", "CONTACT_RECIPIENT"} {
		cfg := mailerConfig("http://127.0.0.1:1")
		delete(cfg, key)
		err := NewMailer(cfg).SendEmail(context.Background(), "s", "b", "")
		assert.True(t, errs.IsConfigMissing(err), key)
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImageStore_Upload(t *testing.T) {
	putter := &fakePutter{}
	images := NewImageStoreWithClient(putter, "portfolio", "https://cdn.example.com/")

	url, err := images.Upload(context.Background(), pngHeader)
	require.NoError(t, err)

	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "projects/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.Equal(t, "portfolio", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, pngHeader, putter.body)
}

func TestImageStore_RejectsNonImages(t *testing.T) {
	putter := &fakePutter{}
	images := NewImageStoreWithClient(putter, "portfolio", "https://cdn.example.com")

	_, err := images.Upload(context.Background(), []byte("just some text"))
	assert.ErrorIs(t, err, errs.ErrUnsupportedMediaType)
	assert.Nil(t, putter.input)

	_, err = images.Upload(context.Background(), make([]byte, MaxImageSize+1))
	assert.ErrorIs(t, err, errs.ErrMaxBodySizeExceeded)
}

func TestImageStore_StorageFailure(t *testing.T) {
	images := NewImageStoreWithClient(&fakePutter{err: errors.New("access denied")}, "portfolio", "https://cdn.example.com")
	_, err := images.Upload(context.Background(), pngHeader)
	assert.True(t, errs.IsServiceUnreachable(err))
}

func TestNewImageStore_RequiresBucket(t *testing.T) {
	_, err := NewImageStore(context.Background(), map[string]string{})
	assert.True(t, errs.IsConfigMissing(err))
}
