package models

import "encoding/xml"

// ISO20022Document covers the account reporting messages a bank sends for
// incoming payments: camt.052 reports, camt.053 statements and camt.054
// notifications. Only fields needed for reconciliation are mapped.
type ISO20022Document struct {
	XMLName xml.Name `xml:"Document"`
	Report  struct {
		Rpt []Statement `xml:"Rpt"`
	} `xml:"BkToCstmrAcctRpt"`
	Statement struct {
		Stmt []Statement `xml:"Stmt"`
	} `xml:"BkToCstmrStmt"`
	Notification struct {
		Ntfctn []Statement `xml:"Ntfctn"`
	} `xml:"BkToCstmrDbtCdtNtfctn"`
}

// Statements returns the report, statement and notification blocks in
// document order of their message type.
func (d *ISO20022Document) Statements() []Statement {
	out := make([]Statement, 0, len(d.Report.Rpt)+len(d.Statement.Stmt)+len(d.Notification.Ntfctn))
	out = append(out, d.Report.Rpt...)
	out = append(out, d.Statement.Stmt...)
	out = append(out, d.Notification.Ntfctn...)
	return out
}

type Statement struct {
	ID   string  `xml:"Id"`
	Ntry []Entry `xml:"Ntry"`
}

type Amount struct {
	Value string `xml:",chardata"`
	Ccy   string `xml:"Ccy,attr"`
}

type Entry struct {
	Amt          Amount       `xml:"Amt"`
	CdtDbtInd    string       `xml:"CdtDbtInd"`
	BookgDt      EntryDate    `xml:"BookgDt"`
	ValDt        EntryDate    `xml:"ValDt"`
	NtryDtls     EntryDetails `xml:"NtryDtls"`
	AddtlNtryInf string       `xml:"AddtlNtryInf"`
}

type EntryDate struct {
	Dt   string `xml:"Dt"`
	DtTm string `xml:"DtTm"`
}

// Date returns the date part, preferring Dt over DtTm.
func (d EntryDate) Date() string {
	if d.Dt != "" {
		return d.Dt
	}
	if len(d.DtTm) >= 10 {
		return d.DtTm[:10]
	}
	return ""
}

type EntryDetails struct {
	TxDtls []TransactionDetails `xml:"TxDtls"`
}

type TransactionDetails struct {
	RmtInf     RemittanceInformation `xml:"RmtInf"`
	AddtlTxInf string                `xml:"AddtlTxInf"`
}

type RemittanceInformation struct {
	Ustrd []string `xml:"Ustrd"`
	Strd  []struct {
		CdtrRefInf struct {
			Ref string `xml:"Ref"`
		} `xml:"CdtrRefInf"`
	} `xml:"Strd"`
}

// IsCredit reports whether the entry is incoming money.
func (e *Entry) IsCredit() bool {
	return e.CdtDbtInd != DirectionDebit
}

// CreditorReference returns the first structured creditor reference of the entry.
func (e *Entry) CreditorReference() string {
	for _, tx := range e.NtryDtls.TxDtls {
		for _, s := range tx.RmtInf.Strd {
			if s.CdtrRefInf.Ref != "" {
				return s.CdtrRefInf.Ref
			}
		}
	}
	return ""
}

// Unstructured returns the first unstructured remittance line of the entry.
func (e *Entry) Unstructured() string {
	for _, tx := range e.NtryDtls.TxDtls {
		for _, u := range tx.RmtInf.Ustrd {
			if u != "" {
				return u
			}
		}
	}
	return ""
}

// AdditionalTransactionInfo returns the first non-empty AddtlTxInf of the entry.
func (e *Entry) AdditionalTransactionInfo() string {
	for _, tx := range e.NtryDtls.TxDtls {
		if tx.AddtlTxInf != "" {
			return tx.AddtlTxInf
		}
	}
	return ""
}
