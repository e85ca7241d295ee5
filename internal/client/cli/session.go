package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sidhilynx/internal/client/api"
	"github.com/dmitrijs2005/sidhilynx/internal/client/keystore"
	"github.com/dmitrijs2005/sidhilynx/internal/common"
)

func refresh(ctx context.Context, ks *keystore.Keystore, client *api.Client) error {
	s, err := ks.Session(ctx)
	if err != nil {
		return err
	}
	res, err := client.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return err
	}
	return ks.SaveSession(ctx, keystore.Session{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
}

// explain adds a hint for rejections the user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, common.ErrStaleRequest):
		return fmt.Errorf("%w (check the system clock)", err)
	case errors.Is(err, common.ErrDeviceRevoked):
		return fmt.Errorf("%w (this device was revoked by an administrator)", err)
	case errors.Is(err, common.ErrDeviceConflict):
		return fmt.Errorf("%w (this device belongs to another account)", err)
	case errors.Is(err, common.ErrInvalidRefreshToken):
		return fmt.Errorf("%w (log in again)", err)
	}
	return err
}
