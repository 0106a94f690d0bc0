package livy

import (
	"context"
	"fmt"
	"net/http"
)

// Batch represents a non-interactive batch job. Unlike sessions and
// statements, its state is a free-form string: the service reports batch
// states loosely and does not constrain them to the session state set.
type Batch struct {
	Id      *int64             `json:"id,omitempty"`
	AppId   *string            `json:"appId,omitempty"`
	AppInfo map[string]*string `json:"appInfo,omitempty"`
	Log     []string           `json:"log,omitempty"`
	State   *string            `json:"state,omitempty"`
}

// Batches is a paged collection of batches. The service reuses the
// "sessions" key for the batch list.
type Batches struct {
	From     *int64  `json:"from,omitempty"`
	Total    *int64  `json:"total,omitempty"`
	Sessions []Batch `json:"sessions,omitempty"`
}

// BatchStateInfo is the reduced batch view returned by the state endpoint.
type BatchStateInfo struct {
	Id    *int64  `json:"id,omitempty"`
	State *string `json:"state,omitempty"`
}

// BatchLog is a window of a batch's log lines.
type BatchLog struct {
	Id    *int64   `json:"id,omitempty"`
	From  *int64   `json:"from,omitempty"`
	Total *int64   `json:"total,omitempty"`
	Log   []string `json:"log,omitempty"`
}

// CreateBatchRequest describes a new batch job. Only File is required;
// absent optional fields are omitted from the JSON body entirely so the
// server's own defaulting applies.
type CreateBatchRequest struct {
	File           string            `json:"file"`
	ProxyUser      *string           `json:"proxyUser,omitempty"`
	ClassName      *string           `json:"className,omitempty"`
	Args           []string          `json:"args,omitempty"`
	Jars           []string          `json:"jars,omitempty"`
	PyFiles        []string          `json:"pyFiles,omitempty"`
	Files          []string          `json:"files,omitempty"`
	DriverMemory   *string           `json:"driverMemory,omitempty"`
	DriverCores    *int64            `json:"driverCores,omitempty"`
	ExecutorMemory *string           `json:"executorMemory,omitempty"`
	ExecutorCores  *int64            `json:"executorCores,omitempty"`
	NumExecutors   *int64            `json:"numExecutors,omitempty"`
	Archives       []string          `json:"archives,omitempty"`
	Queue          *string           `json:"queue,omitempty"`
	Name           *string           `json:"name,omitempty"`
	Conf           map[string]string `json:"conf,omitempty"`
}

// ListBatches retrieves a window of the active batches.
//
// GET /batches
func (c *Client) ListBatches(ctx context.Context, opt *ListOptions, opts ...RequestOption) (*Batches, *http.Response, error) {
	batches := new(Batches)
	resp, err := c.get(ctx, "/batches"+opt.query(), batches, opts)
	if err != nil {
		return nil, resp, err
	}
	return batches, resp, nil
}

// CreateBatch launches a new batch job.
//
// POST /batches
func (c *Client) CreateBatch(ctx context.Context, req *CreateBatchRequest, opts ...RequestOption) (*Batch, *http.Response, error) {
	batch := new(Batch)
	resp, err := c.post(ctx, "/batches", req, batch, opts)
	if err != nil {
		return nil, resp, err
	}
	return batch, resp, nil
}

// GetBatch retrieves a single batch.
//
// GET /batches/{batchId}
func (c *Client) GetBatch(ctx context.Context, batchId int64, opts ...RequestOption) (*Batch, *http.Response, error) {
	batch := new(Batch)
	resp, err := c.get(ctx, fmt.Sprintf("/batches/%d", batchId), batch, opts)
	if err != nil {
		return nil, resp, err
	}
	return batch, resp, nil
}

// GetBatchState retrieves only the state of a single batch.
//
// GET /batches/{batchId}/state
func (c *Client) GetBatchState(ctx context.Context, batchId int64, opts ...RequestOption) (*BatchStateInfo, *http.Response, error) {
	info := new(BatchStateInfo)
	resp, err := c.get(ctx, fmt.Sprintf("/batches/%d/state", batchId), info, opts)
	if err != nil {
		return nil, resp, err
	}
	return info, resp, nil
}

// KillBatch terminates the batch job.
//
// DELETE /batches/{batchId}
func (c *Client) KillBatch(ctx context.Context, batchId int64, opts ...RequestOption) (*DeleteResult, *http.Response, error) {
	result := new(DeleteResult)
	resp, err := c.delete(ctx, fmt.Sprintf("/batches/%d", batchId), result, opts)
	if err != nil {
		return nil, resp, err
	}
	return result, resp, nil
}

// GetBatchLog retrieves a window of the batch's log lines.
//
// GET /batches/{batchId}/log
func (c *Client) GetBatchLog(ctx context.Context, batchId int64, opt *ListOptions, opts ...RequestOption) (*BatchLog, *http.Response, error) {
	batchLog := new(BatchLog)
	resp, err := c.get(ctx, fmt.Sprintf("/batches/%d/log%s", batchId, opt.query()), batchLog, opts)
	if err != nil {
		return nil, resp, err
	}
	return batchLog, resp, nil
}
