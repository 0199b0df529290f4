package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/model"
)

func TestPHPService_ExtensionsSearch(t *testing.T) {
	t.Parallel()

	svc := NewPHPService(newTestPanel(t).Panel, testSeed(t).PHP)

	all := svc.Extensions("")
	assert.Len(t, all, len(testSeed(t).PHP.Extensions))

	for _, ext := range svc.Extensions("MYSQL") {
		assert.True(t, containsFold(ext.Name, "mysql") || containsFold(ext.Description, "mysql"))
	}
	assert.Empty(t, svc.Extensions("no-such-extension"))
}

func TestPHPService_ToggleExtension(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewPHPService(p.Panel, testSeed(t).PHP)
	first := svc.Extensions("")[0]

	ext, err := svc.ToggleExtension(context.Background(), first.Name)
	require.NoError(t, err)
	assert.Equal(t, !first.Enabled, ext.Enabled)

	items := p.collector.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, "Module "+first.Name, items[0].Title)
	assert.Equal(t, first.Name+" module has been "+enabledWord(ext.Enabled)+".", items[0].Description)

	_, err = svc.ToggleExtension(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrModuleNotFound)
}

func TestPHPService_Config(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewPHPService(p.Panel, testSeed(t).PHP)
	ctx := context.Background()

	pool, err := svc.Config(PHPPool)
	require.NoError(t, err)
	assert.NotEmpty(t, pool)

	require.NoError(t, svc.SaveConfig(ctx, PHPIni, "memory_limit = 512M\n"))
	ini, err := svc.Config(PHPIni)
	require.NoError(t, err)
	assert.Equal(t, "memory_limit = 512M\n", ini)

	pool2, err := svc.Config(PHPPool)
	require.NoError(t, err)
	assert.Equal(t, pool, pool2)

	_, err = svc.Config("fpm")
	require.Error(t, err)
	require.Error(t, svc.SaveConfig(ctx, PHPPool, ""))
}
