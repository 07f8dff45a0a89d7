package entitlement

import (
	"fmt"
	"strconv"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

// Identity is the (fid, wallet) pair an entitlement belongs to.
type Identity struct {
	fid    uint64
	wallet string
}

// NewIdentity validates fid and wallet and canonicalises the wallet.
func NewIdentity(fid uint64, wallet string) (Identity, error) {
	if fid == 0 {
		return Identity{}, ErrFIDRequired
	}
	canonical, err := vo.NormalizeAddress(wallet)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	return Identity{fid: fid, wallet: canonical}, nil
}

func (i Identity) FID() uint64    { return i.fid }
func (i Identity) Wallet() string { return i.wallet }

// Collides reports whether i and other share a fid or a wallet. Colliding
// identities share one entitlement record.
func (i Identity) Collides(other Identity) bool {
	return i.fid == other.fid || i.wallet == other.wallet
}

// Equal reports whether both fid and wallet match.
func (i Identity) Equal(other Identity) bool {
	return i.fid == other.fid && i.wallet == other.wallet
}

// LockKeys returns the keys that serialise writes for this identity.
func (i Identity) LockKeys() []string {
	return []string{"fid:" + strconv.FormatUint(i.fid, 10), "wallet:" + i.wallet}
}

func (i Identity) String() string {
	return fmt.Sprintf("%d/%s", i.fid, i.wallet)
}
