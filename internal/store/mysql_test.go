package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery("information_schema\\.tables").WithArgs(recordsTable).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS collection_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewMySQLStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new mysql store: %v", err)
	}
	return s, mock
}

func TestMySQLStoreRead(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT body FROM collection_records WHERE collection=\\? ORDER BY seq").
		WithArgs("tickets").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).
			AddRow([]byte(`{"id":"TKT-1","status":"pending"}`)).
			AddRow([]byte(`{"id":"TKT-2","status":"pending"}`)))

	recs, err := s.Read(context.Background(), "tickets")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 2 || recs[1].ID() != "TKT-2" {
		t.Fatalf("unexpected records %#v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLStoreUpdateMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT body FROM collection_records").
		WithArgs("tickets", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	ok, err := s.Update(context.Background(), "tickets", "nope", Record{"status": "x"})
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestMySQLStoreUpdateMerges(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT body FROM collection_records").
		WithArgs("tickets", "TKT-1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"id":"TKT-1","status":"pending"}`)))
	mock.ExpectExec("UPDATE collection_records SET body=\\?").
		WithArgs([]byte(`{"id":"TKT-1","status":"done"}`), "tickets", "TKT-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.Update(context.Background(), "tickets", "TKT-1", Record{"status": "done"})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLStoreDeleteReportsAbsence(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM collection_records WHERE collection=\\? AND id=\\?").
		WithArgs("booked_tickets", "BKT-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.Delete(context.Background(), "booked_tickets", "BKT-9")
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestMySQLStoreWithinTxRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO collection_records").
		WithArgs("booked_tickets", "BKT-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM collection_records WHERE collection=\\? AND id=\\?").
		WithArgs("tickets", "TKT-1").
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := s.WithinTx(context.Background(), func(tx Store) error {
		if err := tx.Add(context.Background(), "booked_tickets", Record{"id": "BKT-1"}); err != nil {
			return err
		}
		_, err := tx.Delete(context.Background(), "tickets", "TKT-1")
		return err
	})
	if err == nil {
		t.Fatalf("expected error from failing delete")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLStoreWriteReplacesInTx(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM collection_records WHERE collection=\\?").
		WithArgs("tickets").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO collection_records").
		WithArgs("tickets", "TKT-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := s.Write(context.Background(), "tickets", []Record{{"id": "TKT-1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
