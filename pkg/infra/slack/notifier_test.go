package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cytomine/stevedore/pkg/domain/model"
	slackinfra "github.com/cytomine/stevedore/pkg/infra/slack"
)

func TestNotifyRun(t *testing.T) {
	ctx := context.Background()

	t.Run("failed validation run posts a danger attachment with the report URL", func(t *testing.T) {
		var payload struct {
			Attachments []struct {
				Color string `json:"color"`
				Title string `json:"title"`
				Text  string `json:"text"`
			} `json:"attachments"`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			gt.NoError(t, err)
			gt.NoError(t, json.Unmarshal(body, &payload))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		run := model.NewPipelineRun(model.RunKindValidation, "cytomine/pims")
		run.PRNumber = 42
		run.CommitSHA = "0123456789abcdef"
		run.ArtifactURL = "gs://bucket/reports/x/test-report.xml"
		run.Finish(io.ErrUnexpectedEOF)

		gt.NoError(t, slackinfra.New(server.URL).NotifyRun(ctx, run))

		gt.A(t, payload.Attachments).Length(1)
		att := payload.Attachments[0]
		gt.Equal(t, att.Color, "danger")
		gt.B(t, strings.Contains(att.Title, "validation")).True()
		gt.B(t, strings.Contains(att.Text, "PR #42")).True()
		gt.B(t, strings.Contains(att.Text, run.ArtifactURL)).True()
	})

	t.Run("succeeded build run posts a good attachment", func(t *testing.T) {
		var body []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		run := model.NewPipelineRun(model.RunKindBuild, "cytomine/pims")
		run.Tag = "bp-2.4.10"
		run.Channel = model.ClassifyTag(run.Tag)
		run.Finish(nil)

		gt.NoError(t, slackinfra.New(server.URL).NotifyRun(ctx, run))
		gt.B(t, strings.Contains(string(body), `"good"`)).True()
		gt.B(t, strings.Contains(string(body), "bp-2.4.10")).True()
	})

	t.Run("webhook failure is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no_service", http.StatusNotFound)
		}))
		defer server.Close()

		run := model.NewPipelineRun(model.RunKindPublish, "cytomine/pims")
		run.Finish(nil)

		gt.Error(t, slackinfra.New(server.URL).NotifyRun(ctx, run))
	})
}
