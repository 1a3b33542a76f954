package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrTransferFailed is returned when an asset transfer does not succeed,
// either by explicit error or by a false success report.
var ErrTransferFailed = errors.New("token: transfer failed")

// Asset is the fungible-asset surface the pool depends on.
type Asset interface {
	Address() common.Address
	Decimals() uint8
	BalanceOf(owner common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// ResultReporting is implemented by assets that report transfer success
// with an explicit boolean in addition to an error.
type ResultReporting interface {
	TransferReported(from, to common.Address, amount *big.Int) (bool, error)
}

// SafeTransfer moves amount between owners, tolerating both asset shapes:
// a plain Transfer that signals failure only through its error, and a
// reporting transfer that may also return false without an error. Any
// error, and any false report, surfaces as ErrTransferFailed.
func SafeTransfer(asset Asset, from, to common.Address, amount *big.Int) error {
	if reporting, ok := asset.(ResultReporting); ok {
		success, err := reporting.TransferReported(from, to, amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		if !success {
			return fmt.Errorf("%w: transfer reported false", ErrTransferFailed)
		}
		return nil
	}

	if err := asset.Transfer(from, to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}
