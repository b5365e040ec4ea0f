package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"CourseLane/internal/conf"
	"CourseLane/pkg/auth"
	"CourseLane/pkg/httpclient"

	"github.com/go-kratos/kratos/v2/log"
)

// maxEnvelopeBytes 报名服务响应体最大读取字节数
const maxEnvelopeBytes = 1 << 20

// ServiceKeyHeader 服务间共享 API Key 请求头
const ServiceKeyHeader = "X-Service-Key"

// EnrollmentServiceClient calls the enrollment status endpoint of the enrollment service.
// It implements biz.EnrollmentStatusClient and is always used behind a circuit breaker.
type EnrollmentServiceClient struct {
	baseURL    string
	client     *http.Client
	tokens     *auth.Manager
	serviceKey string
	logger     *log.Helper
}

type enrollmentStatusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		IsEnrolled bool `json:"isEnrolled"`
	} `json:"data"`
}

// NewEnrollmentServiceClient 创建 HTTP 客户端（使用配置的超时和代理）
func NewEnrollmentServiceClient(c *conf.Enrollment, a *conf.Auth, tokens *auth.Manager, logger log.Logger) (*EnrollmentServiceClient, error) {
	client, err := httpclient.New(c.ProxyURL, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment service client: %w", err)
	}

	return &EnrollmentServiceClient{
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		client:     client,
		tokens:     tokens,
		serviceKey: a.ServiceKey,
		logger:     log.NewHelper(logger),
	}, nil
}

// FetchEnrollmentStatus asks the enrollment service whether the user is enrolled in the course.
// Any transport error, non-2xx status or non-success envelope is returned as an error.
func (c *EnrollmentServiceClient) FetchEnrollmentStatus(ctx context.Context, userID, courseID string) (bool, error) {
	token, err := c.tokens.IssueServiceToken()
	if err != nil {
		return false, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/enrollments/%s/status?%s",
		c.baseURL, url.PathEscape(courseID), url.Values{"userId": {userID}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(ServiceKeyHeader, c.serviceKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("enrollment service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return false, fmt.Errorf("failed to read enrollment service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("enrollment service returned HTTP %d", resp.StatusCode)
	}

	var envelope enrollmentStatusEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, fmt.Errorf("failed to decode enrollment service response: %w", err)
	}
	if envelope.Status != "success" || envelope.Data == nil {
		return false, fmt.Errorf("enrollment service returned status %q: %s", envelope.Status, envelope.Message)
	}

	c.logger.Debugw("msg", "enrollment status fetched",
		"user_id", userID,
		"course_id", courseID,
		"is_enrolled", envelope.Data.IsEnrolled)
	return envelope.Data.IsEnrolled, nil
}
