package payment

import (
	"fmt"
	"strings"

	"github.com/blues/gfc/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// bankFieldNames 银行账户必填字段，校验失败时按名称逐个列出
var bankFieldNames = []struct {
	name  string
	value func(*model.SettlementAccountModel) string
}{
	{"holder_name", func(s *model.SettlementAccountModel) string { return s.HolderName }},
	{"account_number", func(s *model.SettlementAccountModel) string { return s.AccountNumber }},
	{"ifsc", func(s *model.SettlementAccountModel) string { return s.IFSC }},
	{"bank_name", func(s *model.SettlementAccountModel) string { return s.BankName }},
	{"branch_name", func(s *model.SettlementAccountModel) string { return s.BranchName }},
}

// ValidateSettlementAccount 校验收款账户
// 要么五个银行字段齐全，要么UPI id与收款码同时存在，二者互斥
func ValidateSettlementAccount(account *model.SettlementAccountModel) error {
	hasAnyBank := account.HolderName != "" || account.AccountNumber != "" ||
		account.IFSC != "" || account.BankName != "" || account.BranchName != ""
	hasAnyUpi := account.UpiId != "" || account.QrImageURL != ""

	if hasAnyBank && hasAnyUpi {
		return fmt.Errorf("银行账户与UPI信息只能配置一种")
	}

	if account.HasUpiDetails() {
		return nil
	}

	if hasAnyUpi {
		if account.UpiId == "" {
			return fmt.Errorf("缺少UPI信息: upi_id")
		}
		return fmt.Errorf("缺少UPI信息: qr_image")
	}

	var missing []string
	for _, f := range bankFieldNames {
		if f.value(account) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("缺少银行账户字段: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GenerateUpiQR 由UPI id生成收款二维码PNG
// 机构未上传收款码图片时兜底使用
func GenerateUpiQR(upiId, payeeName string, size int) ([]byte, error) {
	if upiId == "" {
		return nil, fmt.Errorf("UPI id不能为空")
	}
	if size <= 0 {
		size = 256
	}

	uri := fmt.Sprintf("upi://pay?pa=%s&pn=%s&cu=INR", upiId, strings.ReplaceAll(payeeName, " ", "%20"))
	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("生成UPI二维码失败: %w", err)
	}
	return png, nil
}
