package payment

import (
	"testing"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateSettlementAccount(t *testing.T) {
	t.Run("complete bank details pass", func(t *testing.T) {
		err := ValidateSettlementAccount(&model.SettlementAccountModel{
			HolderName:    "Helping Hands Trust",
			AccountNumber: "1234567890",
			IFSC:          "HDFC0001234",
			BankName:      "HDFC Bank",
			BranchName:    "Connaught Place",
		})
		assert.NoError(t, err)
	})

	t.Run("missing bank fields are listed by name", func(t *testing.T) {
		err := ValidateSettlementAccount(&model.SettlementAccountModel{
			HolderName:    "Helping Hands Trust",
			AccountNumber: "1234567890",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ifsc")
		assert.Contains(t, err.Error(), "bank_name")
		assert.Contains(t, err.Error(), "branch_name")
		assert.NotContains(t, err.Error(), "holder_name")
		assert.NotContains(t, err.Error(), "account_number")
	})

	t.Run("upi details pass", func(t *testing.T) {
		err := ValidateSettlementAccount(&model.SettlementAccountModel{
			UpiId:      "helpinghands@upi",
			QrImageURL: "/uploads/qrcodes/1.png",
		})
		assert.NoError(t, err)
	})

	t.Run("partial upi names the missing piece", func(t *testing.T) {
		err := ValidateSettlementAccount(&model.SettlementAccountModel{UpiId: "helpinghands@upi"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "qr_image")
	})

	t.Run("bank and upi are mutually exclusive", func(t *testing.T) {
		err := ValidateSettlementAccount(&model.SettlementAccountModel{
			HolderName: "Helping Hands Trust",
			UpiId:      "helpinghands@upi",
		})
		assert.Error(t, err)
	})
}

func TestGenerateUpiQR(t *testing.T) {
	png, err := GenerateUpiQR("helpinghands@upi", "Helping Hands", 256)
	assert.NoError(t, err)
	// PNG magic bytes
	assert.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = GenerateUpiQR("", "Helping Hands", 256)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(config.GatewayConfig{})

	g, err := r.Get("demo")
	assert.NoError(t, err)
	assert.Equal(t, "demo", g.Name())

	for _, name := range []string{"razorpay", "stripe", "paytm"} {
		g, err := r.Get(name)
		assert.NoError(t, err)
		_, err = g.Charge(100)
		assert.Error(t, err)
	}

	_, err = r.Get("cash")
	assert.ErrorIs(t, err, ErrGatewayNotFound)
}

func TestDemoGatewayRejectsNonPositiveAmount(t *testing.T) {
	g := &DemoGateway{approveRate: 1}
	_, err := g.Charge(0)
	assert.Error(t, err)

	res, err := g.Charge(250)
	assert.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Contains(t, res.TxnId, "demo_")
}
