package business

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

func TestImportCSV(t *testing.T) {
	createdBy := uuid.New()

	t.Run("mixed rows with spanish headers", func(t *testing.T) {
		csv := strings.Join([]string{
			"nombre,direccion,ciudad,provincia,sector,categoria,objetivo",
			"Cerrajeros Rapidos,Calle Mayor 1,Madrid,Madrid,LOCKSMITH,SAB,20",
			"Cerrajeros Rapidos,Calle Mayor 1,Madrid,Madrid,LOCKSMITH,SAB,20",
			"Fontaneria Lopez,Av del Puerto 3,Valencia,Valencia,CONSTRUCTION,SAB,15",
			",Sin Nombre 9,Sevilla,Sevilla,LOCKSMITH,SAB,5",
		}, "\n")

		seen := map[string]bool{}
		repo := &businessRepoMock{
			ExistsByIdentityFunc: func(_ context.Context, name, address string) (bool, error) {
				return seen[domain.BusinessKey(name, address)], nil
			},
			CreateFunc: func(_ context.Context, b domain.Business) error {
				seen[domain.BusinessKey(b.Name, b.Address)] = true
				return nil
			},
		}

		svc := newTestService(repo)
		result, err := svc.ImportCSV(context.Background(), createdBy, strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 3, result.Errors[0].Line)
		assert.Equal(t, 5, result.Errors[1].Line)
	})

	t.Run("missing name column", func(t *testing.T) {
		csv := "direccion,ciudad\nCalle Mayor 1,Madrid\n"

		svc := newTestService(&businessRepoMock{})
		_, err := svc.ImportCSV(context.Background(), createdBy, strings.NewReader(csv))

		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("nil creator", func(t *testing.T) {
		svc := newTestService(&businessRepoMock{})
		_, err := svc.ImportCSV(context.Background(), uuid.Nil, strings.NewReader("name,address\n"))

		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSampleCSV(t *testing.T) {
	sample := SampleCSV()

	lines := strings.Split(strings.TrimSpace(sample), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "name,address,"))
}
