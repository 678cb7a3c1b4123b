package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agegate/contracts/protocol"
	"agegate/internal/attestation/handler/mocks"
	"agegate/internal/attestation/models"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/attestation-mocks.go -package=mocks Service

const (
	testAttester = id.Principal("victor")
	testSubject  = id.Principal("alice")
)

type AttestationHandlerSuite struct {
	suite.Suite
}

func TestAttestationHandlerSuite(t *testing.T) {
	suite.Run(t, new(AttestationHandlerSuite))
}

func (s *AttestationHandlerSuite) TestCreate() {
	s.Run("issues an attestation for the authenticated attester", func() {
		router, mockService := s.newTestRouter()
		mockService.EXPECT().
			Create(gomock.Any(), testAttester, testSubject, uint64(18), uint64(100)).
			Return(&models.Attestation{
				Attester:     testAttester,
				Subject:      testSubject,
				AgeThreshold: 18,
				Hash:         models.ComputeHash(18, 500, 100),
				CreatedAt:    500,
				ValidUntil:   600,
			}, nil)

		w := s.serve(router, s.newRequest(http.MethodPost, "/attestations",
			createRequest{Subject: testSubject.String(), AgeThreshold: 18, ValidDuration: 100}, testAttester))

		s.Assert().Equal(http.StatusCreated, w.Code)
		var resp attestationResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Assert().Equal(testAttester.String(), resp.Attester)
		s.Assert().Equal(uint64(600), resp.ValidUntil)
		s.Assert().NotEmpty(resp.Hash)
	})

	s.Run("missing caller returns 500", func() {
		router, _ := s.newTestRouter()

		w := s.serve(router, s.newRequest(http.MethodPost, "/attestations",
			createRequest{Subject: testSubject.String(), AgeThreshold: 18, ValidDuration: 100}, ""))

		s.Assert().Equal(http.StatusInternalServerError, w.Code)
	})

	s.Run("unauthorized attester surfaces 403 with the verifier code", func() {
		router, mockService := s.newTestRouter()
		mockService.EXPECT().
			Create(gomock.Any(), testAttester, testSubject, uint64(18), uint64(100)).
			Return(nil, dErrors.New(dErrors.CodeVerifierNotAuthorized, "attester is not an authorized verifier"))

		w := s.serve(router, s.newRequest(http.MethodPost, "/attestations",
			createRequest{Subject: testSubject.String(), AgeThreshold: 18, ValidDuration: 100}, testAttester))

		s.assertErrorCode(w, http.StatusForbidden, protocol.CodeVerifierNotAuthorized)
	})

	s.Run("empty subject returns invalid input", func() {
		router, _ := s.newTestRouter()

		w := s.serve(router, s.newRequest(http.MethodPost, "/attestations",
			createRequest{AgeThreshold: 18, ValidDuration: 100}, testAttester))

		s.assertErrorCode(w, http.StatusBadRequest, protocol.CodeInvalidAge)
	})

	s.Run("malformed body returns invalid input", func() {
		router, _ := s.newTestRouter()

		req := httptest.NewRequest(http.MethodPost, "/attestations", bytes.NewReader([]byte("{")))
		req = req.WithContext(requestcontext.WithCaller(req.Context(), testAttester))
		w := s.serve(router, req)

		s.assertErrorCode(w, http.StatusBadRequest, protocol.CodeInvalidAge)
	})
}

func (s *AttestationHandlerSuite) TestRevoke() {
	s.Run("revokes the caller's attestation for the subject", func() {
		router, mockService := s.newTestRouter()
		mockService.EXPECT().
			Revoke(gomock.Any(), testAttester, testSubject).
			Return(nil)

		w := s.serve(router, s.newRequest(http.MethodDelete, "/attestations/alice", nil, testAttester))

		s.Assert().Equal(http.StatusOK, w.Code)
		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Assert().Equal("revoked", resp["status"])
		s.Assert().Equal(testSubject.String(), resp["subject"])
	})

	s.Run("unknown pair surfaces the not-found code", func() {
		router, mockService := s.newTestRouter()
		mockService.EXPECT().
			Revoke(gomock.Any(), testAttester, id.Principal("nobody")).
			Return(dErrors.New(dErrors.CodeNotFound, "no attestation from caller for subject"))

		w := s.serve(router, s.newRequest(http.MethodDelete, "/attestations/nobody", nil, testAttester))

		s.assertErrorCode(w, http.StatusNotFound, protocol.CodeVerificationNotFound)
	})
}

func (s *AttestationHandlerSuite) TestCheck() {
	s.Run("reports an active attestation without authentication", func() {
		router, mockService := s.newTestRouter()
		mockService.EXPECT().
			Check(gomock.Any(), testAttester, testSubject, uint64(18)).
			Return(true, nil)

		w := s.serve(router, httptest.NewRequest(http.MethodGet,
			"/attestations/check?attester=victor&subject=alice&threshold=18", nil))

		s.Assert().Equal(http.StatusOK, w.Code)
		var resp checkResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Assert().True(resp.Active)
		s.Assert().Equal(testAttester.String(), resp.Attester)
	})

	s.Run("missing attester returns invalid input", func() {
		router, _ := s.newTestRouter()

		w := s.serve(router, httptest.NewRequest(http.MethodGet,
			"/attestations/check?subject=alice&threshold=18", nil))

		s.assertErrorCode(w, http.StatusBadRequest, protocol.CodeInvalidAge)
	})

	s.Run("zero threshold returns invalid input", func() {
		router, _ := s.newTestRouter()

		w := s.serve(router, httptest.NewRequest(http.MethodGet,
			"/attestations/check?attester=victor&subject=alice&threshold=0", nil))

		s.assertErrorCode(w, http.StatusBadRequest, protocol.CodeInvalidAge)
	})
}

// Test helpers.

func (s *AttestationHandlerSuite) newTestRouter() (chi.Router, *mocks.MockService) {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(logger, mockService)
	router := chi.NewRouter()
	handler.Register(router)
	handler.RegisterQueries(router)
	return router, mockService
}

func (s *AttestationHandlerSuite) newRequest(method, endpoint string, body any, caller id.Principal) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, endpoint, reader)
	if !caller.IsNil() {
		req = req.WithContext(requestcontext.WithCaller(req.Context(), caller))
	}
	return req
}

func (s *AttestationHandlerSuite) serve(router chi.Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *AttestationHandlerSuite) assertErrorCode(w *httptest.ResponseRecorder, expectedStatus, expectedCode int) {
	s.Assert().Equal(expectedStatus, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Assert().Equal(float64(expectedCode), resp["code"])
}
