package services

import (
	"fmt"
	"strconv"
	"time"
	"vmp-callback/internal/models"
)

// Message texts sent to buyers and the operations channel. Wording and
// formatting follow the store's established style.

// formatRupiah renders an amount in minor units with id-ID dot
// separators, e.g. 50000 -> "50.000".
func formatRupiah(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	if amount < 0 {
		s = s[1:]
	}
	n := len(s)
	if n > 3 {
		var b []byte
		for i, c := range []byte(s) {
			if i > 0 && (n-i)%3 == 0 {
				b = append(b, '.')
			}
			b = append(b, c)
		}
		s = string(b)
	}
	if amount < 0 {
		return "-" + s
	}
	return s
}

func topUpChannelMessage(user *models.User, totalBayar int64, refID string) string {
	return fmt.Sprintf("💰 **TOP-UP SUKSES (QRIS)** 💰\n\n"+
		"👤 **User:** [%s](tg://user?id=%d)\n"+
		"💰 **Total:** `Rp %s`\n"+
		"🆔 **Ref ID:** `%s`",
		user.Username, user.UserID, formatRupiah(totalBayar), refID)
}

func topUpSuccessMessage(saldo int64) string {
	return fmt.Sprintf("╭─────────────────────────\n"+
		"│ 🎉 Top Up Saldo Berhasil!\n"+
		"│ Saldo kini: Rp %s.\n"+
		"╰─────────────────────────", formatRupiah(saldo))
}

func saleChannelMessage(userID int64, namaProduk string, totalBayar int64, stokAkhir int, refID string) string {
	stokAwal := stokAkhir + 1
	return fmt.Sprintf("🎉 **PENJUALAN BARU (QRIS)** 🎉\n\n"+
		"👤 **Pembeli:** [User](tg://user?id=%d)\n"+
		"🛍️ **Produk:** `%s`\n"+
		"💰 **Total:** `Rp %s`\n\n"+
		"--- *Info Tambahan* ---\n"+
		"📦 **Sisa Stok:** `%d` pcs (dari %d)\n"+
		"🏦 **Metode:** QRIS VMP\n"+
		"🆔 **Ref ID:** `%s`",
		userID, namaProduk, formatRupiah(totalBayar), stokAkhir, stokAwal, refID)
}

func purchaseReceiptMessage(totalBayar int64, refID, namaProduk, content string, now time.Time) string {
	return fmt.Sprintf("📜 *Pembelian Berhasil*\n"+
		"Terimakasih telah Melakukan pembelian di store kami\n\n"+
		"*Informasi Pembelian:*\n"+
		"— *Total Dibayar:* Rp %s\n"+
		"— *Date Created:* %s\n"+
		"— *Metode Pembayaran:* QRIS\n"+
		"— *Jumlah Item:* 1x\n"+
		"— *ID transaksi:* %s\n\n"+
		"*%s*\n"+
		"```txt\n"+
		"1. %s\n"+
		"```",
		formatRupiah(totalBayar), now.Format("2/1/2006, 15.04.05"), refID, namaProduk, content)
}

func outOfStockMessage(refID string) string {
	return fmt.Sprintf("⚠️ Pembayaran Anda sukses (`%s`), namun stok produk habis. Harap hubungi Admin!", refID)
}

func productMissingMessage(refID, namaProduk string) string {
	return fmt.Sprintf("⚠️ Pembayaran Anda (`%s`) sukses, namun produk `%s` tidak ditemukan. Hubungi Admin!", refID, namaProduk)
}

func outOfStockChannelMessage(namaProduk, refID string) string {
	return fmt.Sprintf("⚠️ **STOK HABIS SAAT PENGIRIMAN** ⚠️\n\n"+
		"🛍️ **Produk:** `%s`\n"+
		"🆔 **Ref ID:** `%s`\n"+
		"Pembayaran sudah diterima, segera isi stok dan kirim manual!", namaProduk, refID)
}

func cancellationMessage(namaProduk, refID string) string {
	if namaProduk == "" {
		namaProduk = "Top Up Saldo"
	}
	return fmt.Sprintf("❌ *Transaksi Gagal/Kedaluwarsa!*\n\nTransaksi Anda untuk `%s` (`%s`) telah dibatalkan.", namaProduk, refID)
}

func channelFailureAlertMessage(channelID string, err error) string {
	return fmt.Sprintf("⚠️ Gagal mengirim notifikasi ke channel. Pastikan bot adalah admin di channel %s dan ID-nya benar.\n\nError: %v", channelID, err)
}
