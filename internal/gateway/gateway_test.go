package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
	"github.com/frahmantamala/expense-tracker-client/internal/session"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Request Gateway Suite")
}

var _ = Describe("Gateway", func() {
	var (
		ctx     context.Context
		store   *session.Store
		server  *httptest.Server
		hits    atomic.Int32
		status  int
		lastReq *http.Request
		gw      *gateway.Gateway
	)

	BeforeEach(func() {
		ctx = context.Background()
		hits.Store(0)
		status = http.StatusOK
		lastReq = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			lastReq = r.Clone(context.Background())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))

		store = session.NewStore(session.NewMemoryPersister(), logger.Discard())

		var err error
		gw, err = gateway.New(gateway.Config{BaseURL: server.URL}, store, logger.Discard(), gateway.WithHTTPClient(server.Client()))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Context("without a credential", func() {
		It("should fail with Unauthenticated and send nothing", func() {
			// When
			resp, err := gw.Do(ctx, http.MethodGet, "/api/expenses/", nil)

			// Then
			Expect(resp).To(BeNil())
			Expect(errors.Is(err, apperrors.ErrUnauthenticated)).To(BeTrue())
			Expect(hits.Load()).To(BeZero())
		})
	})

	Context("with a credential", func() {
		BeforeEach(func() {
			Expect(store.Set(ctx, "tok-abc", session.Identity{ID: 1, Username: "alice"})).To(Succeed())
		})

		It("should attach the bearer token and keep caller headers", func() {
			req, err := gw.NewRequest(ctx, http.MethodGet, "/api/expenses/", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("X-Custom", "kept")

			resp, err := gw.Call(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer tok-abc"))
			Expect(lastReq.Header.Get("X-Custom")).To(Equal("kept"))
			Expect(lastReq.Header.Get(gateway.HeaderRequestID)).NotTo(BeEmpty())
		})

		It("should reuse the correlation id carried by the context", func() {
			// Given
			traced := apperrors.ContextWithRequestID(ctx, "cli-run-42")

			// When
			resp, err := gw.Do(traced, http.MethodGet, "/api/expenses/", nil)

			// Then
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(lastReq.Header.Get(gateway.HeaderRequestID)).To(Equal("cli-run-42"))
		})

		It("should not modify the caller's request", func() {
			req, _ := gw.NewRequest(ctx, http.MethodGet, "/api/expenses/", nil)

			resp, err := gw.Call(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			Expect(req.Header.Get("Authorization")).To(BeEmpty())
		})

		It("should return non-401 failures untouched", func() {
			status = http.StatusInternalServerError

			resp, err := gw.Do(ctx, http.MethodGet, "/api/expenses/", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			resp.Body.Close()
			Expect(store.Authenticated()).To(BeTrue())
		})

		It("should expire the session on 401", func() {
			// Given
			status = http.StatusUnauthorized

			// When
			resp, err := gw.Do(ctx, http.MethodGet, "/api/expenses/", nil)

			// Then
			Expect(resp).To(BeNil())
			Expect(errors.Is(err, apperrors.ErrSessionExpired)).To(BeTrue())
			Expect(store.Authenticated()).To(BeFalse())
			Expect(hits.Load()).To(Equal(int32(1)))
		})

		It("should report transport errors as NetworkFailure", func() {
			server.Close()

			_, err := gw.Do(ctx, http.MethodGet, "/api/expenses/", nil)

			Expect(errors.Is(err, apperrors.ErrNetworkFailure)).To(BeTrue())
			Expect(store.Authenticated()).To(BeTrue())
		})
	})

	Describe("Decode", func() {
		It("should turn non-2xx into UnexpectedResponse", func() {
			status = http.StatusNotFound

			resp, err := gw.DoPublic(ctx, http.MethodGet, "/api/expenses/categories/", nil)
			Expect(err).NotTo(HaveOccurred())

			err = gateway.Decode(resp, nil)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeUnexpectedResponse))
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should decode a JSON body", func() {
			resp, err := gw.DoPublic(ctx, http.MethodGet, "/anything", nil)
			Expect(err).NotTo(HaveOccurred())

			var body struct {
				OK bool `json:"ok"`
			}
			Expect(gateway.Decode(resp, &body)).To(Succeed())
			Expect(body.OK).To(BeTrue())
		})
	})

	It("should reject a relative base URL", func() {
		_, err := gateway.New(gateway.Config{BaseURL: "/api"}, store, logger.Discard())
		Expect(err).To(HaveOccurred())
	})
})
