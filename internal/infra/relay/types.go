package relay

// SignatureParams carries the fixed fields that participated in the signed
// hash so the relay can reconstruct the verified struct. All gas fields are
// zero by construction on the gasless path.
type SignatureParams struct {
	GasPrice       string `json:"gasPrice,omitempty"`
	Operation      string `json:"operation,omitempty"`
	SafeTxnGas     string `json:"safeTxnGas,omitempty"`
	BaseGas        string `json:"baseGas,omitempty"`
	GasToken       string `json:"gasToken,omitempty"`
	RefundReceiver string `json:"refundReceiver,omitempty"`

	// Deployment-only fields.
	PaymentToken    string `json:"paymentToken,omitempty"`
	Payment         string `json:"payment,omitempty"`
	PaymentReceiver string `json:"paymentReceiver,omitempty"`
}

// DeployRequest is the body of POST /deploy.
type DeployRequest struct {
	EOAAddress         string `json:"eoaAddress"`
	Signature          string `json:"signature"`
	ProxyAddress       string `json:"proxyAddress"`
	SafeFactoryAddress string `json:"safeFactoryAddress"`
}

// ExecuteRequest is the body of POST /execute. Nonce is always a decimal
// string on the wire, never a numeric literal.
type ExecuteRequest struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	ProxyWallet     string          `json:"proxyWallet"`
	Data            string          `json:"data"`
	Nonce           string          `json:"nonce"`
	Signature       string          `json:"signature"`
	SignatureParams SignatureParams `json:"signatureParams"`
	Metadata        string          `json:"metadata,omitempty"`
}

type submitResponse struct {
	TransactionID string `json:"transactionID"`
	ID            string `json:"id"`
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

type deployedResponse struct {
	Deployed bool `json:"deployed"`
}

type transactionStatus struct {
	TransactionID   string `json:"transactionID"`
	State           string `json:"state"`
	TransactionHash string `json:"transactionHash"`
}
