package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/fileinfo"
	"github.com/bcompare-mcp/bcompare-go/internal/operations"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Uptime     string `json:"uptime"`
	ToolFound  bool   `json:"beyond_compare_found"`
	Executable string `json:"executable,omitempty"`
	ToolError  string `json:"tool_error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Status:  "running",
		Version: s.opts.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	}
	if path, err := s.svc.Executable(); err != nil {
		resp.ToolError = err.Error()
	} else {
		resp.ToolFound = true
		resp.Executable = path
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.Info(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Formats())
}

type operationResponse struct {
	Summary string        `json:"summary"`
	Result  domain.Result `json:"result"`
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	op, err := decodeOperation(r.PathValue("name"), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var unknown unknownOperationError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.svc.Run(r.Context(), op)
	status := http.StatusOK
	if res.Failure != nil {
		status = statusFor(res.Failure)
	}
	writeJSON(w, status, operationResponse{Summary: operations.Summarize(res), Result: res})
}

type fileInfoRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) {
	var req fileInfoRequest
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := fileinfo.Inspect(req.FilePath, s.opts.Catalog)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type unknownOperationError string

func (e unknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", string(e))
}

// decodeOperation is a closed switch over the operation names.
func decodeOperation(name string, body io.Reader) (domain.Operation, error) {
	switch domain.OperationKind(name) {
	case domain.KindCompareFiles:
		return decodeRequest[operations.CompareFilesRequest](body)
	case domain.KindCompareFolders:
		return decodeRequest[operations.CompareFoldersRequest](body)
	case domain.KindSyncFolders:
		return decodeRequest[operations.SyncFoldersRequest](body)
	case domain.KindGenerateReport:
		return decodeRequest[operations.GenerateReportRequest](body)
	case domain.KindMergeFiles:
		return decodeRequest[operations.MergeFilesRequest](body)
	}
	return domain.Operation{}, unknownOperationError(name)
}

func decodeRequest[T interface{ Operation() domain.Operation }](body io.Reader) (domain.Operation, error) {
	var req T
	if err := decodeStrict(body, &req); err != nil {
		return domain.Operation{}, err
	}
	return req.Operation(), nil
}

func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
