package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tenant-stock-api/internal/application/audit"
	"github.com/jhoicas/tenant-stock-api/internal/application/auth"
	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/application/wallet"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
	"github.com/jhoicas/tenant-stock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/tenant-stock-api/internal/interfaces/http"
	"github.com/jhoicas/tenant-stock-api/pkg/logger"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
	pkgjwt "github.com/jhoicas/tenant-stock-api/pkg/jwt"
)

const (
	imei     = "490154203237518"
	imeiRaw  = "49-015420-323751"
	password = "clave-segura-123"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type api struct {
	app   *fiber.App
	store *memory.Store
	tx    *memory.TxRunner
}

func strPtr(s string) *string { return &s }

func newAPI(t *testing.T) *api {
	t.Helper()
	s := memory.NewStore()
	s.AddBusiness(&entity.Business{ID: "A", Name: "Tienda A", Subdomain: "tienda-a", Status: entity.BusinessStatusActive})
	s.AddBusiness(&entity.Business{ID: "B", Name: "Tienda B", Status: entity.BusinessStatusActive})
	s.AddLocation(&entity.Location{ID: "a-centro", BusinessID: "A", Name: "Centro", IsDefault: true})
	s.AddLocation(&entity.Location{ID: "b-unica", BusinessID: "B", Name: "Única"})

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	for _, id := range []string{"gerente", "multi", "agente"} {
		s.AddUser(&entity.User{ID: id, Email: id + "@tienda.co", PasswordHash: string(hash), Status: entity.UserStatusActive})
	}
	s.AddMembership(&entity.Membership{UserID: "gerente", BusinessID: "A", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "multi", BusinessID: "A", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "multi", BusinessID: "B", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "agente", BusinessID: "A", Role: entity.RoleAgent, Status: entity.MembershipActive, LocationID: strPtr("a-centro")})
	s.AddProduct(&entity.Product{ID: "p-global", Brand: "Acme", Model: "X1"})

	m := metrics.New("test")
	log := logger.Nop().Zerolog()
	authority := membership.NewAuthority(
		memory.NewBusinessRepository(s), memory.NewMembershipRepository(s), memory.NewUserRepository(s),
	)
	resolver := scope.NewResolver(
		memory.NewBusinessRepository(s), memory.NewMembershipRepository(s), memory.NewLocationRepository(s),
		memory.NewSessionStore(), authority, m, log,
	)
	tx := memory.NewTxRunner(s)
	auditRepo := memory.NewAuditRepository(s)
	pct := decimal.NewFromInt(3)
	engine := inventory.NewEngine(inventory.Deps{
		Tx:         tx,
		Items:      memory.NewInventoryItemRepository(s),
		Sales:      memory.NewSaleRepository(s),
		Products:   memory.NewProductRepository(s),
		Locations:  memory.NewLocationRepository(s),
		Scopes:     resolver,
		Authority:  authority,
		Audit:      audit.NewRecorder(auditRepo, schema.Full().Audit, m, log),
		Commission: wallet.NewCommissionPoster(memory.NewWalletLedgerRepository(s), wallet.CommissionConfig{Pct: &pct}),
		Caps:       schema.Full(),
		Metrics:    m,
		Log:        log,
	})
	authUC := auth.NewAuthUseCase(memory.NewUserRepository(s), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Scopes:    resolver,
		Engine:    engine,
		AuditRepo: auditRepo,
		Metrics:   m,
		JWTSecret: testJWTSecret,
	})
	return &api{app: app, store: s, tx: tx}
}

// token genera un JWT con una sesión propia para el usuario.
func token(t *testing.T, userID, sessionID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, sessionID, false, testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

func (a *api) do(t *testing.T, method, path, tok string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func receiveBody(ident string) dto.ReceiveItemRequest {
	return dto.ReceiveItemRequest{Identifier: ident, ProductID: "p-global", OrderPrice: decimal.NewFromInt(900)}
}

func sellBody(ident string) dto.SellItemRequest {
	return dto.SellItemRequest{Identifier: ident, Price: decimal.NewFromInt(1500)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas_DevuelveTokenConSesion(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "GERENTE@tienda.co", Password: password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "gerente", out.User.ID)

	userID, sid, _, err := pkgjwt.Parse(testJWTSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "gerente", userID)
	assert.Equal(t, out.SessionID, sid)
}

func TestLogin_PasswordIncorrecto_Retorna401(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "gerente@tienda.co", Password: "otra"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción, venta y consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_RecibirVenderConsultar(t *testing.T) {
	a := newAPI(t)
	tok := token(t, "gerente", "s1")

	resp := a.do(t, http.MethodPost, "/api/inventory/items", tok, receiveBody(imeiRaw))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	rec := decode[dto.ReceiveItemResponse](t, resp)
	assert.Equal(t, imei, rec.Item.Identifier, "el identificador se guarda canónico")
	assert.Equal(t, "a-centro", rec.Item.LocationID)
	assert.Equal(t, inventory.ReceiveCreated, rec.Outcome)

	resp = a.do(t, http.MethodPost, "/api/inventory/items", tok, receiveBody(imei))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, inventory.ReceiveUnchanged, decode[dto.ReceiveItemResponse](t, resp).Outcome)

	resp = a.do(t, http.MethodPost, "/api/inventory/sell", tok, sellBody(imeiRaw))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	sold := decode[dto.SellItemResponse](t, resp)
	assert.Equal(t, string(inventory.SellOK), sold.Code)
	require.NotNil(t, sold.Item)
	assert.Equal(t, entity.ItemStatusSold, sold.Item.Status)
	require.NotNil(t, sold.Sale)
	require.NotNil(t, sold.Commission)
	assert.True(t, decimal.NewFromInt(45).Equal(sold.Commission.Amount))

	resp = a.do(t, http.MethodPost, "/api/inventory/sell", tok, sellBody(imei))
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	again := decode[dto.SellItemResponse](t, resp)
	assert.Equal(t, string(inventory.SellItemAlreadySold), again.Code)
	require.NotNil(t, again.Sale, "la respuesta trae la venta existente")
	assert.Equal(t, sold.Sale.ID, again.Sale.ID)

	resp = a.do(t, http.MethodGet, "/api/inventory/items/"+imei, tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	look := decode[dto.LookupItemResponse](t, resp)
	require.NotNil(t, look.LastSale)
	assert.Equal(t, sold.Sale.ID, look.LastSale.ID)

	assert.Len(t, a.store.Sales(), 1)
	assert.Len(t, a.store.LedgerEntries(), 1)
}

func TestSell_ItemInexistente_Retorna404ConCodigo(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/inventory/sell", token(t, "gerente", "s1"), sellBody(imei))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(inventory.SellItemNotFound), decode[dto.SellItemResponse](t, resp).Code)
}

func TestSell_IdentificadorInvalido_Retorna422(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/inventory/sell", token(t, "gerente", "s1"), sellBody("abc"))
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "IDENTIFIER_INVALID", decodeError(t, resp).Code)
}

func TestSell_BodyInvalido_Retorna400(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/sell", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, "gerente", "s1"))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSell_NoWaitConFilaBloqueada_Retorna503(t *testing.T) {
	a := newAPI(t)
	tok := token(t, "gerente", "s1")
	require.Equal(t, fiber.StatusCreated, a.do(t, http.MethodPost, "/api/inventory/items", tok, receiveBody(imei)).StatusCode)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- a.tx.Run(context.Background(), func(items repository.InventoryItemRepository, _ repository.SaleRepository) error {
			if _, err := items.GetForUpdate(context.Background(), "A", imei, false); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	resp := a.do(t, http.MethodPost, "/api/inventory/sell?nowait=true", tok, sellBody(imei))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "LOCK_CONTENTION", decodeError(t, resp).Code)
	assert.Empty(t, a.store.Sales())
}

// ──────────────────────────────────────────────────────────────────────────────
// Scope
// ──────────────────────────────────────────────────────────────────────────────

func TestScope_VariasMembresiasSinSeleccion_Retorna428(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/inventory/sell", token(t, "multi", "s-multi"), sellBody(imei))
	require.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, "NO_ACTIVE_TENANT", decodeError(t, resp).Code)
}

func TestScope_SeleccionarYLimpiar(t *testing.T) {
	a := newAPI(t)
	tok := token(t, "multi", "s-multi")

	resp := a.do(t, http.MethodPut, "/api/scope", tok, dto.SelectScopeRequest{BusinessID: "B"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	sel := decode[dto.ScopeResponse](t, resp)
	assert.Equal(t, "B", sel.BusinessID)
	assert.Equal(t, "b-unica", sel.LocationID)

	resp = a.do(t, http.MethodGet, "/api/scope", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[dto.ScopeResponse](t, resp)
	assert.Equal(t, "B", got.BusinessID)
	assert.Equal(t, string(scope.SourceSession), got.Source)

	resp = a.do(t, http.MethodDelete, "/api/scope", tok, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/scope", tok, nil)
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)
}

func TestScope_SeleccionSinMembresia_Retorna403(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPut, "/api/scope", token(t, "gerente", "s1"), dto.SelectScopeRequest{BusinessID: "B"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "CROSS_TENANT_ACCESS_DENIED", decodeError(t, resp).Code)
}

func TestScope_PorSubdominio(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/scope", nil)
	req.Host = "tienda-a.example.com"
	req.Header.Set("Authorization", "Bearer "+token(t, "multi", "s-host"))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := decode[dto.ScopeResponse](t, resp)
	assert.Equal(t, "A", got.BusinessID)
	assert.Equal(t, string(scope.SourceSubdomain), got.Source)
}

func TestScope_ImpersonacionSinSuperAdmin_SeIgnora(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/scope?as_business=B", token(t, "gerente", "s1"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "A", decode[dto.ScopeResponse](t, resp).BusinessID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestAudit_GerenteVeCadenaValida(t *testing.T) {
	a := newAPI(t)
	tok := token(t, "gerente", "s1")
	require.Equal(t, fiber.StatusCreated, a.do(t, http.MethodPost, "/api/inventory/items", tok, receiveBody(imei)).StatusCode)
	require.Equal(t, fiber.StatusOK, a.do(t, http.MethodPost, "/api/inventory/sell", tok, sellBody(imei)).StatusCode)

	resp := a.do(t, http.MethodGet, "/api/audit?verify=true&limit=1", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.AuditListResponse](t, resp)
	require.NotNil(t, out.ChainValid)
	assert.True(t, *out.ChainValid)
	require.Len(t, out.Entries, 1, "limit recorta después de verificar")
	assert.Equal(t, entity.AuditActionSold, out.Entries[0].Action)
}

func TestAudit_Agente_Retorna403(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/audit", token(t, "agente", "s-ag"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMetrics_ExponeContadoresHTTP(t *testing.T) {
	a := newAPI(t)
	a.do(t, http.MethodGet, "/api/scope", token(t, "gerente", "s1"), nil)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_http_requests_total")
	assert.Contains(t, string(body), "test_scope_resolutions_total")
}
