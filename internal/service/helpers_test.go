package service_test

import (
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/repository"
	"github.com/straye-as/product-configurator/internal/service"
	"github.com/straye-as/product-configurator/internal/storage"
	"github.com/straye-as/product-configurator/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

// amount is a zero reduction with a valid type
var amount = domain.ReductionSettings{ReductionType: domain.ReductionTypeAmount}

func percent(v float64) domain.ReductionSettings {
	return domain.ReductionSettings{Reduction: v, ReductionType: domain.ReductionTypePercentage}
}

func noneRule() *domain.QuantityRuleMap {
	return &domain.QuantityRuleMap{Mode: "none", Locked: true, Round: "none"}
}

func fixedRule(offset int, locked bool) *domain.QuantityRuleMap {
	return &domain.QuantityRuleMap{Mode: "fixed", Locked: locked, Offset: offset, Round: "none"}
}

func expressionRule(offset int, round string, sources ...domain.QuantitySource) *domain.QuantityRuleMap {
	return &domain.QuantityRuleMap{Mode: "expression", Locked: true, Offset: offset, Round: round, Sources: sources}
}

func newFormatter(t *testing.T) *service.PriceFormatter {
	t.Helper()
	formatter, err := service.NewPriceFormatter("EUR", "en")
	require.NoError(t, err)
	return formatter
}

func newResolver(t *testing.T) *service.PriceResolverService {
	t.Helper()
	return service.NewPriceResolverService(service.NewReductionPickerService(), newFormatter(t))
}

// services bundles the wired services over a test database
type services struct {
	db            *gorm.DB
	storageDir    string
	store         *repository.Store
	snapshots     *service.SnapshotService
	configurators *service.ConfiguratorService
	quotes        *service.QuoteService
	carts         *service.CartService
	catalog       *service.CatalogService
}

func setupServices(t *testing.T) *services {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	formatter := newFormatter(t)

	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	store := repository.NewStore(db)
	applier := service.NewQuantityRuleApplier()
	resolver := service.NewPriceResolverService(service.NewReductionPickerService(), formatter)
	catalog := service.NewCatalogService(store.Products, formatter)
	snapshots := service.NewSnapshotService(store.Snapshots, local, logger)

	return &services{
		db:         db,
		storageDir: dir,
		store:      store,
		snapshots:  snapshots,
		configurators: service.NewConfiguratorService(
			store,
			service.NewConfiguratorValidatorService(),
			service.NewConfiguratorFactory(),
			snapshots,
			logger,
		),
		quotes:  service.NewQuoteService(store.Configurators, catalog, applier, resolver, formatter, logger),
		carts:   service.NewCartService(store, applier, resolver, formatter, "", logger),
		catalog: catalog,
	}
}
