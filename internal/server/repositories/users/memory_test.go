package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u := &models.User{ID: 1234567, Name: "stu", Password: "pw", Email: "stu@fudan.edu.cn"}
	_, err := r.Save(ctx, u)
	require.NoError(t, err)

	byEmail, err := r.FindByEmail(ctx, "stu@fudan.edu.cn")
	require.NoError(t, err)
	assert.True(t, byEmail.Equal(u))

	byID, err := r.FindByID(ctx, 1234567)
	require.NoError(t, err)
	assert.True(t, byID.Equal(u))

	ok, err := r.ExistsByID(ctx, 1234567)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.DeleteByID(ctx, 1234567))

	_, err = r.FindByEmail(ctx, "stu@fudan.edu.cn")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.FindByID(ctx, 1234567)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.DeleteByID(ctx, 1234567), common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Save(ctx, &models.User{ID: 1, Name: "a", Email: "a@b.c"})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Name)
}

func TestMemoryRepository_Conflicts(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Save(ctx, &models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = r.Save(ctx, &models.User{ID: 2, Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.Save(ctx, &models.User{ID: 1, Email: "other@b.c"})
	assert.ErrorIs(t, err, common.ErrIdentifierTaken)
}

func TestMemoryRepository_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	saved := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := r.Save(ctx, &models.User{ID: id, Email: "race@b.c"}); err == nil {
				mu.Lock()
				saved++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, common.ErrorAlreadyExists)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, saved)
}
