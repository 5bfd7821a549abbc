package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"regional-means/models"
)

// RemoteProvider скачивает файл по HTTP и передает его файловому провайдеру
type RemoteProvider struct {
	client *http.Client
	inner  []Provider
}

func NewRemoteProvider(timeout time.Duration, inner ...Provider) *RemoteProvider {
	return &RemoteProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		inner: inner,
	}
}

func (p *RemoteProvider) Name() string {
	return "remote"
}

func (p *RemoteProvider) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return p.innerFor(u.Path) != nil
}

func (p *RemoteProvider) innerFor(name string) Provider {
	for _, inner := range p.inner {
		if inner.Supports(name) {
			return inner
		}
	}
	return nil
}

func (p *RemoteProvider) Load(ctx context.Context, rawURL, variable string) (*models.GriddedData, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL: %w", err)
	}
	inner := p.innerFor(u.Path)
	if inner == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("файл не найден: %w", os.ErrNotExist)
		}
		return nil, fmt.Errorf("ошибка загрузки: статус %d", resp.StatusCode)
	}

	// Сохраняем во временный файл с тем же расширением
	tmp, err := os.CreateTemp("", "field-*-"+strings.ReplaceAll(path.Base(u.Path), "*", ""))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("ошибка загрузки тела ответа: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	data, err := inner.Load(ctx, tmp.Name(), variable)
	if err != nil {
		return nil, err
	}
	data.Source = rawURL
	return data, nil
}
