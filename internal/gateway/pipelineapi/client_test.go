package pipelineapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

func TestClient_Submit(t *testing.T) {
	batchID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/batches", r.URL.Path)

		var req submitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Files, 2)
		assert.Equal(t, "invoice.pdf", req.Files[0].Name)

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(submitResponse{BatchID: batchID})
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	got, err := client.Submit(context.Background(), []port.StagedFile{
		{Name: "invoice.pdf", Bucket: "staging", Key: "batches/x/invoice.pdf", ContentType: "application/pdf", Size: 2048},
		{Name: "label.png", Bucket: "staging", Key: "batches/x/label.png", ContentType: "image/png", Size: 512},
	})

	require.NoError(t, err)
	assert.Equal(t, batchID, got)
}

func TestClient_Submit_EmptyBatch(t *testing.T) {
	client := NewClientWithEndpoint("http://unused")
	_, err := client.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestClient_Events_StreamsSnapshots(t *testing.T) {
	batchID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/batches/"+batchID.String()+"/events", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		frames := []domain.BatchSnapshot{
			{BatchID: batchID, Step: domain.BatchStepClassifying, Completed: 1, Total: 3},
			{BatchID: batchID, Step: domain.BatchStepExtracting, Completed: 2, Total: 3, File: "invoice.pdf"},
			{BatchID: batchID, Step: domain.BatchStepComplete, Completed: 3, Total: 3, ShipmentsFound: 1},
		}
		for _, snap := range frames {
			payload, _ := json.Marshal(snap)
			fmt.Fprintf(w, "event: progress\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	events, err := client.Events(context.Background(), batchID)
	require.NoError(t, err)

	var snaps []domain.BatchSnapshot
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-events:
			if !ok {
				require.Len(t, snaps, 3)
				assert.Equal(t, domain.BatchStepExtracting, snaps[1].Step)
				assert.Equal(t, "invoice.pdf", snaps[1].File)
				assert.True(t, snaps[2].Terminal())
				return
			}
			snaps = append(snaps, snap)
		case <-deadline:
			t.Fatal("event stream did not finish in time")
		}
	}
}

func TestClient_Events_SkipsNonDataFrames(t *testing.T) {
	batchID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		payload, _ := json.Marshal(domain.BatchSnapshot{BatchID: batchID, Step: domain.BatchStepComplete})
		fmt.Fprint(w, ": keepalive comment\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data:\n\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	events, err := client.Events(context.Background(), batchID)
	require.NoError(t, err)

	var snaps []domain.BatchSnapshot
	for snap := range events {
		snaps = append(snaps, snap)
	}
	require.Len(t, snaps, 1)
	assert.Equal(t, domain.BatchStepComplete, snaps[0].Step)
}

func TestClient_Events_UnknownBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	_, err := client.Events(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestClient_ActiveBatches(t *testing.T) {
	batchID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/batches/active", r.URL.Path)
		_ = json.NewEncoder(w).Encode(activeBatchesResponse{Batches: []domain.Batch{
			{
				ID:           batchID,
				FileCount:    3,
				CurrentStep:  domain.BatchStepBuildingDrafts,
				StepProgress: domain.StepProgress{Completed: 2, Total: 3},
			},
		}})
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	batches, err := client.ActiveBatches(context.Background())

	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, batchID, batches[0].ID)
	assert.Equal(t, domain.BatchStepBuildingDrafts, batches[0].CurrentStep)
	assert.Equal(t, 2, batches[0].StepProgress.Completed)
}
