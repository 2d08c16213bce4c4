package console

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/config"
	"github.com/hongminglow/all-in-dash/internal/endpoints"
	"github.com/hongminglow/all-in-dash/internal/guard"
	"github.com/hongminglow/all-in-dash/internal/notify"
	"github.com/hongminglow/all-in-dash/internal/routes"
	"github.com/hongminglow/all-in-dash/internal/server"
	"github.com/hongminglow/all-in-dash/internal/session"
	"github.com/hongminglow/all-in-dash/internal/storage/memory"
)

const password = "dashboard-demo"

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *safeBuffer) Reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

func newShell(t *testing.T, start string) (*Shell, *safeBuffer) {
	t.Helper()
	seed, err := server.DemoUsers(password)
	require.NoError(t, err)
	cfg := config.ServerConfig{JWTSecret: "console-secret", JWTIssuer: "all-in-dash", JWTTTL: time.Hour, CORSOrigins: []string{"*"}}
	ts := httptest.NewServer(server.Handler(cfg, memory.NewUsers(seed...)))
	t.Cleanup(ts.Close)

	quiet := log.New(io.Discard, "", 0)
	out := &safeBuffer{}
	store := session.NewStore(&memory.Slot{}, session.WithLogger(quiet))
	history := guard.NewHistory(start)
	table := routes.DefaultTable()
	client := api.New(ts.URL, store, api.WithLogger(quiet), api.WithNotifier(notify.Nop{}), api.WithHTTPClient(ts.Client()))

	sh := &Shell{
		Store:   store,
		History: history,
		Client:  client,
		Auth:    endpoints.NewAuth(client, store, quiet),
		Users:   endpoints.NewUsers(client, store, quiet),
		Table:   table,
		Sidebar: routes.Sidebar(),
		Out:     out,
	}
	sh.Guard = guard.New(table, history, guard.WithLogger(quiet), guard.WithObserver(sh.Observe))
	return sh, out
}

func TestShellLoginWhoamiNav(t *testing.T) {
	sh, out := newShell(t, "/merchant/beneficiaries")
	ctx := context.Background()
	sh.Store.Hydrate(ctx)

	require.NoError(t, sh.Execute(ctx, "whoami"))
	assert.Contains(t, out.String(), "anonymous")

	require.NoError(t, sh.Execute(ctx, "login merchant "+password))
	assert.Contains(t, out.String(), "signed in as merchant (MERCHANT)")

	out.Reset()
	require.NoError(t, sh.Execute(ctx, "whoami"))
	assert.Contains(t, out.String(), "home=/merchant")

	out.Reset()
	require.NoError(t, sh.Execute(ctx, "nav"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var active []string
	for _, line := range lines {
		if strings.HasPrefix(line, "*") {
			active = append(active, line)
		}
	}
	require.Len(t, active, 1)
	assert.Contains(t, active[0], "/merchant/beneficiaries")
	assert.NotContains(t, out.String(), "/admin")
}

func TestShellRequestCommands(t *testing.T) {
	sh, out := newShell(t, routes.Home)
	ctx := context.Background()
	sh.Store.Hydrate(ctx)
	require.NoError(t, sh.Execute(ctx, "login client "+password))

	require.NoError(t, sh.Execute(ctx, "me"))
	assert.Contains(t, out.String(), "3 client <client@example.com> CLIENT")

	require.NoError(t, sh.Execute(ctx, "verify"))
	assert.Contains(t, out.String(), "identity confirmed for client (CLIENT)")

	out.Reset()
	err := sh.Execute(ctx, "get /users/1")
	require.Error(t, err)
	assert.True(t, api.IsForbidden(err))
	assert.Contains(t, out.String(), "403 FORBIDDEN")

	out.Reset()
	require.NoError(t, sh.Execute(ctx, "get /health"))
	assert.Contains(t, out.String(), `"status":"ok"`)
}

func TestShellUsageErrors(t *testing.T) {
	sh, _ := newShell(t, routes.Home)
	ctx := context.Background()
	sh.Store.Hydrate(ctx)

	assert.Error(t, sh.Execute(ctx, "login onlyuser"))
	assert.Error(t, sh.Execute(ctx, "goto relative"))
	assert.Error(t, sh.Execute(ctx, "back"))
	assert.Error(t, sh.Execute(ctx, "frobnicate"))
	assert.ErrorIs(t, sh.Execute(ctx, "quit"), ErrQuit)
	assert.NoError(t, sh.Execute(ctx, "   "))
}

func TestShellGuardFollowsSession(t *testing.T) {
	sh, out := newShell(t, routes.Login)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sh.Guard.Run(ctx, sh.Store, sh.History)
	}()
	sh.Store.Hydrate(ctx)

	require.NoError(t, sh.Execute(ctx, "login admin "+password))
	require.Eventually(t, func() bool { return sh.History.Path() == routes.AdminRoot }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "[guard] /login -> /admin")

	require.NoError(t, sh.Execute(ctx, "goto /dashboard/transfers"))
	require.Eventually(t, func() bool { return sh.History.Path() == routes.AdminRoot }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, sh.Execute(ctx, "logout"))
	require.Eventually(t, func() bool { return sh.History.Path() == routes.Login }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestShellRunReadsUntilQuit(t *testing.T) {
	sh, out := newShell(t, routes.Home)
	sh.Store.Hydrate(context.Background())

	err := sh.Run(context.Background(), strings.NewReader("whoami\nnope\nquit\nwhoami\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out.String(), "anonymous"))
	assert.Contains(t, out.String(), `error: unknown command "nope"`)
}
