//nolint:errcheck //ok for this test code
package setup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/testsupport/basedata"
	"github.com/mpapenbr/race-strategy-sim/testsupport/testdb"
)

func TestCreateAndLoadByName(t *testing.T) {
	pool := testdb.InitTestDB()
	r := NewSetupRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
	ctx := context.Background()
	car := basedata.SampleCar()

	created, err := r.Create(ctx, "fast", &car)
	assert.NilError(t, err)
	assert.Assert(t, created.ID != "")

	got, err := r.LoadByName(ctx, "fast")
	assert.NilError(t, err)
	assert.Equal(t, got.ID, created.ID)
	assert.DeepEqual(t, got.Car, car)

	_, err = r.Create(ctx, "fast", &car)
	assert.Assert(t, err != nil, "name must be unique")
}

func TestLoadByNameUnknown(t *testing.T) {
	pool := testdb.InitTestDB()
	r := NewSetupRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
	_, err := r.LoadByName(context.Background(), "unknown")
	assert.ErrorIs(t, err, api.ErrNoRows)
}

func TestLoadAllAndDelete(t *testing.T) {
	pool := testdb.InitTestDB()
	r := NewSetupRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
	ctx := context.Background()
	def := catalog.DefaultCar()
	sample := basedata.SampleCar()
	_, err := r.Create(ctx, "b-default", &def)
	assert.NilError(t, err)
	_, err = r.Create(ctx, "a-sample", &sample)
	assert.NilError(t, err)

	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 2)
	assert.Equal(t, all[0].Name, "a-sample")
	assert.Equal(t, all[1].Name, "b-default")

	n, err := r.DeleteByName(ctx, "a-sample")
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	n, err = r.DeleteByName(ctx, "a-sample")
	assert.NilError(t, err)
	assert.Equal(t, n, 0)
}
